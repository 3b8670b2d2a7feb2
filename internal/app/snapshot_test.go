package app

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestExportSnapshotStampsTime(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	snap, err := svc.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if snap.Version != SnapshotVersion {
		t.Fatalf("unexpected version %q", snap.Version)
	}
	if !snap.ExportedAt.Equal(time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected exported_at %s", snap.ExportedAt)
	}
	if snap.Columns[1].ItemCount != 2 {
		t.Fatalf("expected two in progress items, got %d", snap.Columns[1].ItemCount)
	}
}

func TestSnapshotJSONRoundTripImports(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	snap, err := svc.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	snap.Items[0].Position = 9

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	imported, err := svc.ImportSnapshot(context.Background(), decoded)
	if err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if got := snapshotIDs(imported.Items); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("expected import to honor positions, got %v", got)
	}
	if imported.Items[2].Title() != "Alpha" {
		t.Fatalf("expected payload to survive import, got %q", imported.Items[2].Title())
	}
}

func TestSnapshotValidate(t *testing.T) {
	cases := []Snapshot{
		{Version: "other.v9"},
		{Columns: []SnapshotColumn{{ID: "a"}, {ID: "a"}}},
		{Items: []SnapshotItem{{ID: "", ColumnID: "a"}}},
		{Items: []SnapshotItem{{ID: "x", ColumnID: " "}}},
		{Items: []SnapshotItem{{ID: "x", ColumnID: "a"}, {ID: "x", ColumnID: "a"}}},
	}
	for idx, snap := range cases {
		if err := snap.Validate(); !errors.Is(err, ErrInvalidSnapshot) {
			t.Fatalf("case %d: expected ErrInvalidSnapshot, got %v", idx, err)
		}
	}
	ok := Snapshot{Version: SnapshotVersion, Items: []SnapshotItem{{ID: "x", ColumnID: "a"}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
