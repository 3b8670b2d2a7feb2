package board

import (
	"slices"
	"testing"

	"github.com/hylla/pipeline/internal/domain"
)

func testItems(pairs ...string) []domain.Item {
	out := make([]domain.Item, 0, len(pairs)/2)
	for idx := 0; idx+1 < len(pairs); idx += 2 {
		out = append(out, domain.Item{ID: pairs[idx], ColumnID: pairs[idx+1], Fields: domain.Fields{"name": pairs[idx]}})
	}
	return out
}

func ids(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestStoreItemsInColumnPreservesOrder(t *testing.T) {
	s := NewStore(testItems("a", "c1", "b", "c2", "c", "c1", "d", "c1"))
	got := ids(s.ItemsInColumn("c1"))
	if !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Fatalf("unexpected column items %v", got)
	}
	if got := s.ItemsInColumn("missing"); len(got) != 0 {
		t.Fatalf("expected empty column, got %v", ids(got))
	}
}

func TestStoreReassignColumn(t *testing.T) {
	s := NewStore(testItems("a", "c1", "b", "c1"))
	if !s.ReassignColumn("a", "c2") {
		t.Fatal("expected reassign to change the collection")
	}
	a, _ := s.Item("a")
	if a.ColumnID != "c2" || s.Index("a") != 0 {
		t.Fatalf("expected a in c2 at index 0, got %#v at %d", a, s.Index("a"))
	}
	if s.ReassignColumn("a", "c2") {
		t.Fatal("expected repeated reassign to be a no-op")
	}
}

func TestStoreUnknownIDsAreNoOps(t *testing.T) {
	s := NewStore(testItems("a", "c1", "b", "c2"))
	before := s.Items()
	if s.ReassignColumn("missing", "c2") {
		t.Fatal("expected reassign of unknown item to be a no-op")
	}
	if s.MoveRelativeTo("missing", "a") {
		t.Fatal("expected move of unknown item to be a no-op")
	}
	if s.MoveRelativeTo("a", "missing") {
		t.Fatal("expected move onto unknown anchor to be a no-op")
	}
	if s.MoveRelativeTo("a", "a") {
		t.Fatal("expected self move to be a no-op")
	}
	after := s.Items()
	if !slices.Equal(ids(before), ids(after)) || after[0].ColumnID != "c1" || after[1].ColumnID != "c2" {
		t.Fatalf("collection changed: %#v", after)
	}
}

func TestStoreMoveRelativeToPositionalPrecision(t *testing.T) {
	s := NewStore(testItems("A", "col1", "B", "col1", "C", "col2"))
	if !s.MoveRelativeTo("C", "B") {
		t.Fatal("expected move to change the collection")
	}
	got := s.Items()
	if !slices.Equal(ids(got), []string{"A", "C", "B"}) {
		t.Fatalf("unexpected order %v", ids(got))
	}
	if got[1].ColumnID != "col1" {
		t.Fatalf("expected C to adopt col1, got %q", got[1].ColumnID)
	}
}

func TestStoreMoveRelativeToDownward(t *testing.T) {
	s := NewStore(testItems("A", "c1", "B", "c1", "C", "c1"))
	s.MoveRelativeTo("A", "C")
	if got := ids(s.Items()); !slices.Equal(got, []string{"B", "C", "A"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestStoreSnapshotsAreNotMutated(t *testing.T) {
	s := NewStore(testItems("A", "c1", "B", "c2"))
	snapshot := s.Items()
	s.ReassignColumn("A", "c2")
	s.MoveRelativeTo("B", "A")
	if snapshot[0].ID != "A" || snapshot[0].ColumnID != "c1" {
		t.Fatalf("expected published snapshot to be untouched, got %#v", snapshot)
	}
	snapshot[0].Fields["name"] = "mutated"
	item, _ := s.Item("A")
	if item.Fields.String("name") != "A" {
		t.Fatalf("expected store payload to be untouched, got %q", item.Fields.String("name"))
	}
}
