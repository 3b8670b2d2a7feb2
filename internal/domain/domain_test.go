package domain

import (
	"testing"
	"time"
)

func TestNewColumnValidation(t *testing.T) {
	if _, err := NewColumn("", "Planned", "", 0); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewColumn("c1", "   ", "", 0); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewColumn("c1", "Planned", "", -1); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if _, err := NewColumn("c1", "Planned", "#12345", 0); err != ErrInvalidColor {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
}

func TestNewColumnNormalizesColor(t *testing.T) {
	c, err := NewColumn(" planned ", " Planned ", "#6b7280", 0)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	if c.ID != "planned" || c.Name != "Planned" {
		t.Fatalf("unexpected trimmed column %#v", c)
	}
	if c.Color != "#6B7280" {
		t.Fatalf("unexpected color %q", c.Color)
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "", want: ""},
		{in: "#abc", want: "#ABC"},
		{in: "#10B981", want: "#10B981"},
		{in: "62", want: "62"},
		{in: "256", err: ErrInvalidColor},
		{in: "#ggg", err: ErrInvalidColor},
		{in: "teal", err: ErrInvalidColor},
	}
	for _, tc := range cases {
		got, err := NormalizeColor(tc.in)
		if err != tc.err {
			t.Fatalf("NormalizeColor(%q) error = %v, want %v", tc.in, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColumnIndex(t *testing.T) {
	columns := []Column{{ID: "a"}, {ID: "b"}}
	if got := ColumnIndex(columns, "b"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := ColumnIndex(columns, "missing"); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestNewItemValidation(t *testing.T) {
	if _, err := NewItem(" ", "c1", nil); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewItem("i1", "", nil); err != ErrInvalidColumnID {
		t.Fatalf("expected ErrInvalidColumnID, got %v", err)
	}
}

func TestItemCloneDoesNotAlias(t *testing.T) {
	fields := Fields{
		"name":  "Ship it",
		"owner": map[string]any{"name": "Ada"},
		"tags":  []any{"a", map[string]any{"k": "v"}},
	}
	item, err := NewItem("i1", "c1", fields)
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	fields["name"] = "mutated"
	if item.Title() != "Ship it" {
		t.Fatalf("expected constructor to copy fields, got %q", item.Title())
	}

	clone := item.Clone()
	clone.Fields.Map("owner")["name"] = "Grace"
	clone.Fields["tags"].([]any)[1].(map[string]any)["k"] = "changed"
	if got := item.Fields.Map("owner").String("name"); got != "Ada" {
		t.Fatalf("expected nested owner to be untouched, got %q", got)
	}
	if got := item.Fields["tags"].([]any)[1].(map[string]any)["k"]; got != "v" {
		t.Fatalf("expected nested slice map to be untouched, got %v", got)
	}
}

func TestItemTitleFallsBackToID(t *testing.T) {
	item := Item{ID: "i1", ColumnID: "c1"}
	if item.Title() != "i1" {
		t.Fatalf("unexpected title %q", item.Title())
	}
}

func TestFieldsTime(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	f := Fields{"startAt": now, "endAt": now.Format(time.RFC3339), "bad": "soon"}
	if got, ok := f.Time("startAt"); !ok || !got.Equal(now) {
		t.Fatalf("unexpected startAt %v %v", got, ok)
	}
	if got, ok := f.Time("endAt"); !ok || !got.Equal(now) {
		t.Fatalf("unexpected endAt %v %v", got, ok)
	}
	if _, ok := f.Time("bad"); ok {
		t.Fatal("expected invalid timestamp to be rejected")
	}
	if _, ok := f.Time("missing"); ok {
		t.Fatal("expected missing timestamp to be rejected")
	}
}

func TestCloneItemsNil(t *testing.T) {
	if CloneItems(nil) != nil {
		t.Fatal("expected nil clone for nil input")
	}
}
