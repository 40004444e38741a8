package labels

import "testing"

func TestLabelsGroup_AddRemove(t *testing.T) {
	g := NewLabelsGroup()

	t.Run("RangeThenRemove", func(t *testing.T) {
		added, err := g.AddRange(1, 5)
		if err != nil {
			t.Fatalf("AddRange failed: %v", err)
		}
		if added != 5 {
			t.Errorf("Expected 5 labels added, got %d", added)
		}
		if !g.Remove(3) {
			t.Error("Remove(3) should succeed")
		}
		if g.Size() != 4 {
			t.Errorf("Expected size 4, got %d", g.Size())
		}
		if g.Contains(3) {
			t.Error("Label 3 should be absent after removal")
		}
		if !g.Contains(5) {
			t.Error("Label 5 should still be present")
		}
	})

	t.Run("AddIdempotent", func(t *testing.T) {
		size := g.Size()
		if g.Add(5) {
			t.Error("Adding an existing label should return false")
		}
		if g.Size() != size {
			t.Errorf("Size changed from %d to %d on duplicate add", size, g.Size())
		}
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		size := g.Size()
		if g.Remove(42) {
			t.Error("Removing an absent label should return false")
		}
		if g.Size() != size {
			t.Errorf("Size changed from %d to %d on absent remove", size, g.Size())
		}
	})

	t.Run("NegativeLabelRejected", func(t *testing.T) {
		if g.Add(-1) {
			t.Error("Negative labels must be rejected")
		}
	})

	t.Run("First", func(t *testing.T) {
		first, ok := g.First()
		if !ok || first != 1 {
			t.Errorf("Expected first label 1, got %d (ok=%v)", first, ok)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if !g.Clear() {
			t.Error("Clear on non-empty group should return true")
		}
		if !g.IsEmpty() {
			t.Error("Group should be empty after Clear")
		}
		if g.Clear() {
			t.Error("Clear on empty group should return false")
		}
	})
}

func TestLabelsGroup_InsertionKeepsOrder(t *testing.T) {
	g := NewLabelsGroup()
	for _, label := range []int{7, 2, 9, 4, 2} {
		g.Add(label)
	}
	want := []int{2, 4, 7, 9}
	got := g.Labels()
	if len(got) != len(want) {
		t.Fatalf("Expected %d labels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Label %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestIterator(t *testing.T) {
	t.Run("AscendingWalk", func(t *testing.T) {
		g := NewLabelsGroup()
		g.AddRange(10, 12)
		it := g.CreateIterator()
		var seen []int
		for label, ok := it.Next(); ok; label, ok = it.Next() {
			seen = append(seen, label)
		}
		if len(seen) != 3 || seen[0] != 10 || seen[2] != 12 {
			t.Errorf("Unexpected iteration order: %v", seen)
		}
	})

	t.Run("FailFastOnMutation", func(t *testing.T) {
		g := NewLabelsGroup()
		g.AddRange(1, 5)
		it := g.CreateIterator()
		if _, ok := it.Next(); !ok {
			t.Fatal("First Next should succeed")
		}
		g.Remove(4)
		if it.Valid() {
			t.Error("Iterator should be invalid after structural edit")
		}
		if _, ok := it.Next(); ok {
			t.Error("Next after structural edit must fail")
		}
	})

	t.Run("FailFastOnInvalidate", func(t *testing.T) {
		g := NewLabelsGroup()
		g.AddRange(1, 3)
		it := g.CreateIterator()
		g.Invalidate()
		if _, ok := it.Next(); ok {
			t.Error("Next after Invalidate must fail")
		}
	})
}

func TestChangeDetail(t *testing.T) {
	t.Run("AccumulatesAsBits", func(t *testing.T) {
		var d ChangeDetail
		d.NoteAdd()
		d.NoteAdd()
		if got := d.Extract(); got != ChangeAdd {
			t.Errorf("Expected ADD exactly once as a bit, got %s", got)
		}
		if got := d.Extract(); got != ChangeNone {
			t.Errorf("Expected no change after extraction, got %s", got)
		}
	})

	t.Run("AddAndRemoveCombine", func(t *testing.T) {
		var d ChangeDetail
		d.NoteAdd()
		d.NoteRemove()
		if got := d.Summary(); got != ChangeAdd|ChangeRemove {
			t.Errorf("Expected ADD|REMOVE, got %s", got)
		}
		d.Clear()
		d.NoteRemove()
		if got := d.Summary(); got != ChangeRemove {
			t.Errorf("Bit set after Clear must survive until extraction, got %s", got)
		}
	})
}
