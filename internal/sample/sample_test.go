package sample

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/pipeline/internal/domain"
)

func TestPipelineIsDeterministic(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	first, err := New(42, now).Pipeline(DefaultItemCount, DefaultColumns())
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	second, err := New(42, now).Pipeline(DefaultItemCount, DefaultColumns())
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if len(first) != DefaultItemCount {
		t.Fatalf("expected %d items, got %d", DefaultItemCount, len(first))
	}
	for idx := range first {
		if first[idx].ID != second[idx].ID || first[idx].Title() != second[idx].Title() || first[idx].ColumnID != second[idx].ColumnID {
			t.Fatalf("item %d differs between runs: %#v vs %#v", idx, first[idx], second[idx])
		}
	}

	other, err := New(7, now).Pipeline(DefaultItemCount, DefaultColumns())
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if other[0].ID == first[0].ID {
		t.Fatal("expected a different seed to produce different ids")
	}
}

func TestItemsFieldsWithinWindow(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	columns := DefaultColumns()
	items, err := New(1, now).Pipeline(40, columns)
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	seen := map[string]struct{}{}
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
		if domain.ColumnIndex(columns, item.ColumnID) < 0 {
			t.Fatalf("item %q in unknown column %q", item.ID, item.ColumnID)
		}
		name := item.Fields.String("name")
		if name == "" || strings.ToUpper(name[:1]) != name[:1] {
			t.Fatalf("expected capitalized name, got %q", name)
		}
		start, ok := item.Fields.Time("start_at")
		if !ok || start.After(now) || now.Sub(start) > window {
			t.Fatalf("start_at %v outside window", start)
		}
		end, ok := item.Fields.Time("end_at")
		if !ok || end.Before(now) || end.Sub(now) > window {
			t.Fatalf("end_at %v outside window", end)
		}
		if item.Fields.Map("owner").String("name") == "" {
			t.Fatalf("expected owner on %q", item.ID)
		}
		if !strings.Contains(item.Fields.String("notes"), "## Brief") {
			t.Fatalf("expected markdown notes on %q", item.ID)
		}
	}
}

func TestItemsRequiresColumns(t *testing.T) {
	if _, err := New(1, time.Now()).Items(3, nil, nil); err == nil {
		t.Fatal("expected error without columns")
	}
	items, err := New(1, time.Now()).Items(0, nil, nil)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty result, got %v %v", items, err)
	}
}

func TestDefaultColumns(t *testing.T) {
	columns := DefaultColumns()
	got := make([]string, 0, len(columns))
	for _, column := range columns {
		if _, err := domain.NewColumn(column.ID, column.Name, column.Color, column.Position); err != nil {
			t.Fatalf("NewColumn(%q) error = %v", column.ID, err)
		}
		got = append(got, column.Name)
	}
	if !slices.Equal(got, []string{"Planned", "In Progress", "Done"}) {
		t.Fatalf("unexpected columns %v", got)
	}
}

func TestOwnersHaveDistinctIDs(t *testing.T) {
	owners := New(3, time.Now()).Owners(DefaultOwnerCount)
	if len(owners) != DefaultOwnerCount {
		t.Fatalf("expected %d owners, got %d", DefaultOwnerCount, len(owners))
	}
	seen := map[string]struct{}{}
	for _, owner := range owners {
		if _, dup := seen[owner.ID]; dup {
			t.Fatalf("duplicate owner id %q", owner.ID)
		}
		seen[owner.ID] = struct{}{}
		if !strings.HasSuffix(owner.Image, owner.ID) {
			t.Fatalf("unexpected avatar %q", owner.Image)
		}
	}
}
