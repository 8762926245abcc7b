package verdict

import "testing"

func TestIDSetMembership(t *testing.T) {
	s := NewIDSet("a", "b")

	if !s.Contains("a") || !s.Contains("b") {
		t.Fatal("missing members")
	}
	if s.Contains("c") {
		t.Fatal("unexpected member")
	}
	if s.IsEmpty() {
		t.Fatal("set is not empty")
	}
	if !NewIDSet().IsEmpty() {
		t.Fatal("empty set reported non-empty")
	}
}

func TestIDSetIntersects(t *testing.T) {
	a := NewIDSet("x", "y")
	b := NewIDSet("y", "z")
	c := NewIDSet("z")

	if !a.Intersects(b) || !b.Intersects(a) {
		t.Fatal("expected overlap")
	}
	if a.Intersects(c) {
		t.Fatal("unexpected overlap")
	}
	if a.Intersects(NewIDSet()) || NewIDSet().Intersects(a) {
		t.Fatal("empty set intersected")
	}
}

func TestIDSetAddRemove(t *testing.T) {
	orig := NewIDSet("a")
	s := orig.Add("b").Remove("a")

	if s.Contains("a") {
		t.Fatal("removed member still present")
	}
	if !s.Contains("b") {
		t.Fatal("added member missing")
	}
	// The receiver is never modified.
	if !orig.Equal(NewIDSet("a")) {
		t.Fatalf("original set changed: %v", orig)
	}
}

func TestIDSetDeduplicates(t *testing.T) {
	s := NewIDSet("b", "a", "b", "")
	if !s.Equal(NewIDSet("a", "b")) {
		t.Fatalf("unexpected set: %v", s)
	}
}

func TestIDSetEqual(t *testing.T) {
	if !NewIDSet("a", "b").Equal(NewIDSet("b", "a")) {
		t.Fatal("order should not matter")
	}
	if NewIDSet("a").Equal(NewIDSet("a", "b")) {
		t.Fatal("different sets reported equal")
	}
}
