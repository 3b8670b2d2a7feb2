package app

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/hylla/pipeline/internal/board"
	"github.com/hylla/pipeline/internal/domain"
)

type fakeCatalog struct {
	columns []domain.Column
	items   []domain.Item
	err     error
}

func (f *fakeCatalog) ListColumns(context.Context) ([]domain.Column, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Column(nil), f.columns...), nil
}

func (f *fakeCatalog) ListItems(context.Context) ([]domain.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.CloneItems(f.items), nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		columns: []domain.Column{
			{ID: "planned", Name: "Planned", Color: "#6B7280", Position: 0},
			{ID: "in_progress", Name: "In Progress", Color: "#F59E0B", Position: 1},
			{ID: "done", Name: "Done", Color: "#10B981", Position: 2},
		},
		items: []domain.Item{
			{ID: "a", ColumnID: "planned", Fields: domain.Fields{"name": "Alpha"}},
			{ID: "b", ColumnID: "in_progress", Fields: domain.Fields{"name": "Beta"}},
			{ID: "c", ColumnID: "in_progress", Fields: domain.Fields{"name": "Gamma"}},
		},
	}
}

func newLoadedService(t *testing.T, catalog Catalog) *Service {
	t.Helper()
	svc := NewService(catalog, func() time.Time {
		return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	}, nil, ServiceConfig{})
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return svc
}

func snapshotIDs(items []SnapshotItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestServiceRequiresLoad(t *testing.T) {
	svc := NewService(newFakeCatalog(), nil, nil, ServiceConfig{})
	if _, err := svc.Snapshot(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := svc.DragStart(context.Background(), "a", board.SourceCard); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestServiceLoadUsesDefaultColumnsWhenCatalogEmpty(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(catalog, nil, nil, ServiceConfig{
		DefaultColumns: []domain.Column{
			{ID: "todo", Name: "Todo", Position: 0},
			{ID: "todo", Name: "Duplicate", Position: 1},
			{ID: "", Name: "Invalid"},
			{ID: "done", Name: "Done", Position: 2},
		},
	})
	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Columns) != 2 || snap.Columns[0].ID != "todo" || snap.Columns[1].ID != "done" {
		t.Fatalf("unexpected columns %#v", snap.Columns)
	}
}

func TestServiceLoadPropagatesCatalogErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeCatalog{err: boom}, nil, nil, ServiceConfig{})
	if _, err := svc.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestServiceLoadDriftPolicy(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.items = append(catalog.items, domain.Item{ID: "z", ColumnID: "archived"})

	svc := NewService(catalog, nil, nil, ServiceConfig{})
	if _, err := svc.Load(context.Background()); !errors.Is(err, domain.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}

	svc = NewService(catalog, nil, nil, ServiceConfig{DriftPolicy: board.DriftFirstColumn})
	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	z, ok := snap.Item("z")
	if !ok || z.ColumnID != "planned" {
		t.Fatalf("expected drifted item in planned, got %#v", z)
	}
}

func TestServiceDragLifecyclePublishes(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	ctx := WithGestureOrigin(context.Background(), GestureOrigin{Transport: OriginHTTP})
	updates, cancel := svc.Subscribe(8)
	defer cancel()

	res, err := svc.DragStart(ctx, "a", board.SourceCard)
	if err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	if res.State != board.StateDragging || res.ActiveID != "a" || res.Changed {
		t.Fatalf("unexpected start result %#v", res)
	}
	res, err = svc.DragOver(ctx, board.CardTarget("c", "in_progress"))
	if err != nil {
		t.Fatalf("DragOver() error = %v", err)
	}
	if !res.Changed || res.Intent != "hover_item" {
		t.Fatalf("unexpected over result %#v", res)
	}
	res, err = svc.DragEnd(ctx, nil)
	if err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if res.Changed || res.State != board.StateIdle || res.ActiveID != "" {
		t.Fatalf("unexpected end result %#v", res)
	}

	published := drainSnapshots(updates)
	if len(published) != 3 {
		t.Fatalf("expected start, hover and end snapshots, got %d", len(published))
	}
	if published[0].State != board.StateDragging || published[0].ActiveID != "a" {
		t.Fatalf("unexpected start snapshot state=%s active=%q", published[0].State, published[0].ActiveID)
	}
	if got := snapshotIDs(published[1].ItemsInColumn("in_progress")); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("unexpected published column %v", got)
	}
	last := published[len(published)-1]
	if last.State != board.StateIdle || last.ActiveID != "" {
		t.Fatalf("expected idle after cancel, got state=%s active=%q", last.State, last.ActiveID)
	}
	if last.LastOrigin != OriginHTTP {
		t.Fatalf("expected http origin, got %q", last.LastOrigin)
	}
	for i := 1; i < len(published); i++ {
		if published[i].Revision <= published[i-1].Revision {
			t.Fatalf("expected increasing revisions, got %d then %d", published[i-1].Revision, published[i].Revision)
		}
	}
}

func TestServiceSettledDropPublishesOnce(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	ctx := context.Background()
	if _, err := svc.DragStart(ctx, "a", board.SourceCard); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	updates, cancel := svc.Subscribe(8)
	defer cancel()

	res, err := svc.DragEnd(ctx, board.ColumnTarget("planned"))
	if err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}
	if res.Changed || !res.Dropped || res.State != board.StateIdle {
		t.Fatalf("unexpected end result %#v", res)
	}
	published := drainSnapshots(updates)
	if len(published) != 1 {
		t.Fatalf("expected one drop snapshot, got %d", len(published))
	}
	if published[0].State != board.StateIdle || published[0].Revision != res.Revision {
		t.Fatalf("unexpected drop snapshot state=%s revision=%d", published[0].State, published[0].Revision)
	}
}

func drainSnapshots(updates <-chan Snapshot) []Snapshot {
	var out []Snapshot
	for {
		select {
		case snap := <-updates:
			out = append(out, snap)
		default:
			return out
		}
	}
}

func TestServiceMoveItem(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	ctx := context.Background()

	res, err := svc.MoveItem(ctx, "a", board.ColumnTarget("done"))
	if err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if !res.Changed || res.State != board.StateIdle {
		t.Fatalf("unexpected move result %#v", res)
	}
	items, err := svc.ItemsInColumn(ctx, "done")
	if err != nil {
		t.Fatalf("ItemsInColumn() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("unexpected done items %#v", items)
	}

	res, err = svc.MoveItem(ctx, "c", board.CardTarget("b", "in_progress"))
	if err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
	if !res.Changed {
		t.Fatalf("expected reorder, got %#v", res)
	}
	items, _ = svc.ItemsInColumn(ctx, "in_progress")
	if items[0].ID != "c" || items[1].ID != "b" {
		t.Fatalf("unexpected in progress order %#v", items)
	}

	if _, err := svc.MoveItem(ctx, "ghost", board.ColumnTarget("done")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ItemsInColumn(ctx, "archive"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.DragStart(ctx, "a", board.SourceCard); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	if _, err := svc.MoveItem(ctx, "b", board.ColumnTarget("done")); !errors.Is(err, board.ErrDragActive) {
		t.Fatalf("expected ErrDragActive, got %v", err)
	}
}

func TestServiceReplaceAndReload(t *testing.T) {
	catalog := newFakeCatalog()
	svc := newLoadedService(t, catalog)
	ctx := context.Background()

	if _, err := svc.DragStart(ctx, "a", board.SourceCard); err != nil {
		t.Fatalf("DragStart() error = %v", err)
	}
	if _, err := svc.ReplaceItems(ctx, nil); !errors.Is(err, board.ErrDragActive) {
		t.Fatalf("expected ErrDragActive, got %v", err)
	}
	if _, err := svc.Load(ctx); !errors.Is(err, board.ErrDragActive) {
		t.Fatalf("expected ErrDragActive on reload, got %v", err)
	}
	if _, err := svc.DragEnd(ctx, nil); err != nil {
		t.Fatalf("DragEnd() error = %v", err)
	}

	snap, err := svc.ReplaceItems(ctx, []domain.Item{{ID: "n", ColumnID: "done"}})
	if err != nil {
		t.Fatalf("ReplaceItems() error = %v", err)
	}
	if len(snap.Items) != 1 || snap.Columns[2].ItemCount != 1 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}

	snap, err = svc.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("expected reload from catalog, got %d items", len(snap.Items))
	}
}

func TestServiceSubscribeCancelClosesChannel(t *testing.T) {
	svc := newLoadedService(t, newFakeCatalog())
	updates, cancel := svc.Subscribe(0)
	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Fatal("expected closed channel")
	}
	if _, err := svc.MoveItem(context.Background(), "a", board.ColumnTarget("done")); err != nil {
		t.Fatalf("MoveItem() error = %v", err)
	}
}

func TestGestureOriginFromContext(t *testing.T) {
	if got := GestureOriginFromContext(context.Background()); got.Transport != OriginSystem {
		t.Fatalf("expected system origin, got %#v", got)
	}
	ctx := WithGestureOrigin(context.Background(), GestureOrigin{Transport: " MCP ", ActorID: " agent-1 "})
	got := GestureOriginFromContext(ctx)
	if got.Transport != OriginMCP || got.ActorID != "agent-1" {
		t.Fatalf("unexpected origin %#v", got)
	}
	ctx = WithGestureOrigin(context.Background(), GestureOrigin{Transport: "carrier-pigeon"})
	if got := GestureOriginFromContext(ctx); got.Transport != OriginSystem {
		t.Fatalf("expected unknown transport to normalize to system, got %#v", got)
	}
}
