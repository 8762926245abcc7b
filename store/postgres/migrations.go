package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Verdict store (PostgreSQL).
var Migrations = migrate.NewGroup("verdict")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_policies",
			Version: "20250301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_policies (
    id              TEXT PRIMARY KEY,
    account_id      TEXT NOT NULL DEFAULT '',
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    is_system       BOOLEAN NOT NULL DEFAULT FALSE,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    version         INTEGER NOT NULL DEFAULT 1,
    statements      JSONB NOT NULL DEFAULT '[]',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(account_id, name)
);

CREATE INDEX IF NOT EXISTS idx_verdict_policies_account ON verdict_policies (account_id);
CREATE INDEX IF NOT EXISTS idx_verdict_policies_active ON verdict_policies (account_id, is_active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_principal_groups",
			Version: "20250301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_principal_groups (
    id              TEXT PRIMARY KEY,
    account_id      TEXT NOT NULL,
    name            TEXT NOT NULL,
    is_default      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(account_id, name)
);

CREATE INDEX IF NOT EXISTS idx_verdict_pgroups_account ON verdict_principal_groups (account_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_verdict_pgroups_default
    ON verdict_principal_groups (account_id) WHERE is_default;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_principal_groups`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_group_members",
			Version: "20250301000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_group_members (
    group_id        TEXT NOT NULL REFERENCES verdict_principal_groups(id) ON DELETE CASCADE,
    principal_id    TEXT NOT NULL,

    PRIMARY KEY (group_id, principal_id)
);

CREATE INDEX IF NOT EXISTS idx_verdict_members_principal ON verdict_group_members (principal_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_group_members`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_affiliations",
			Version: "20250301000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_affiliations (
    id                  TEXT PRIMARY KEY,
    agency_account_id   TEXT NOT NULL,
    talent_account_id   TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'active',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verdict_affil_agency ON verdict_affiliations (agency_account_id);
CREATE INDEX IF NOT EXISTS idx_verdict_affil_talent ON verdict_affiliations (talent_account_id);
CREATE INDEX IF NOT EXISTS idx_verdict_affil_status ON verdict_affiliations (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_affiliations`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_grants",
			Version: "20250301000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_grants (
    id                  TEXT PRIMARY KEY,
    affiliation_id      TEXT NOT NULL REFERENCES verdict_affiliations(id) ON DELETE CASCADE,
    policy_id           TEXT NOT NULL DEFAULT '',
    role                TEXT NOT NULL DEFAULT '',
    principal_group_id  TEXT NOT NULL REFERENCES verdict_principal_groups(id) ON DELETE CASCADE,
    type                TEXT NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(affiliation_id, policy_id, role, principal_group_id)
);

CREATE INDEX IF NOT EXISTS idx_verdict_grants_affiliation ON verdict_grants (affiliation_id);
CREATE INDEX IF NOT EXISTS idx_verdict_grants_group ON verdict_grants (principal_group_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_grants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20250301000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS verdict_decision_logs (
    id              TEXT PRIMARY KEY,
    account_id      TEXT NOT NULL,
    principal_id    TEXT NOT NULL,
    role            TEXT NOT NULL DEFAULT '',
    action          TEXT NOT NULL,
    resource_type   TEXT NOT NULL,
    resource_id     TEXT NOT NULL,
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    matched_rule    TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verdict_dlogs_account ON verdict_decision_logs (account_id);
CREATE INDEX IF NOT EXISTS idx_verdict_dlogs_principal ON verdict_decision_logs (account_id, principal_id);
CREATE INDEX IF NOT EXISTS idx_verdict_dlogs_decision ON verdict_decision_logs (account_id, decision);
CREATE INDEX IF NOT EXISTS idx_verdict_dlogs_created ON verdict_decision_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS verdict_decision_logs`)
				return err
			},
		},
	)
}
