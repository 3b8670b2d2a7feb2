package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/board"
	"github.com/hylla/pipeline/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Service board APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// Board returns the live board snapshot.
func (a *AppServiceAdapter) Board(ctx context.Context) (app.Snapshot, error) {
	if err := a.ready(); err != nil {
		return app.Snapshot{}, err
	}
	snap, err := a.service.Snapshot(ctx)
	if err != nil {
		return app.Snapshot{}, mapAppError("get board", err)
	}
	return snap, nil
}

// Columns returns the column set with item counts.
func (a *AppServiceAdapter) Columns(ctx context.Context) ([]app.SnapshotColumn, error) {
	snap, err := a.Board(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Columns, nil
}

// ItemsInColumn returns one column projection in board order.
func (a *AppServiceAdapter) ItemsInColumn(ctx context.Context, columnID string) ([]ColumnItem, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	columnID = strings.TrimSpace(columnID)
	if columnID == "" {
		return nil, fmt.Errorf("column_id is required: %w", ErrInvalidRequest)
	}
	items, err := a.service.ItemsInColumn(ctx, columnID)
	if err != nil {
		return nil, mapAppError("items in column", err)
	}
	out := make([]ColumnItem, 0, len(items))
	for idx, item := range items {
		out = append(out, ColumnItem{
			ID:       item.ID,
			ColumnID: item.ColumnID,
			Index:    idx,
			Title:    item.Title(),
			Fields:   item.Fields,
		})
	}
	return out, nil
}

// DragStart begins a drag.
func (a *AppServiceAdapter) DragStart(ctx context.Context, in DragStartRequest) (app.DragResult, error) {
	if err := a.ready(); err != nil {
		return app.DragResult{}, err
	}
	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return app.DragResult{}, fmt.Errorf("item_id is required: %w", ErrInvalidRequest)
	}
	source, err := board.ParseSourceKind(in.Source)
	if err != nil {
		return app.DragResult{}, mapAppError("drag start", err)
	}
	res, err := a.service.DragStart(ctx, itemID, source)
	if err != nil {
		return app.DragResult{}, mapAppError("drag start", err)
	}
	return res, nil
}

// DragOver reports the current drop target.
func (a *AppServiceAdapter) DragOver(ctx context.Context, in DragRequest) (app.DragResult, error) {
	if err := a.ready(); err != nil {
		return app.DragResult{}, err
	}
	target, err := parseTarget(in.Target)
	if err != nil {
		return app.DragResult{}, mapAppError("drag over", err)
	}
	res, err := a.service.DragOver(ctx, target)
	if err != nil {
		return app.DragResult{}, mapAppError("drag over", err)
	}
	return res, nil
}

// DragEnd finishes the active drag. A missing target cancels.
func (a *AppServiceAdapter) DragEnd(ctx context.Context, in DragRequest) (app.DragResult, error) {
	if err := a.ready(); err != nil {
		return app.DragResult{}, err
	}
	target, err := parseTarget(in.Target)
	if err != nil {
		return app.DragResult{}, mapAppError("drag end", err)
	}
	res, err := a.service.DragEnd(ctx, target)
	if err != nil {
		return app.DragResult{}, mapAppError("drag end", err)
	}
	return res, nil
}

// MoveItem runs a complete gesture for one item.
func (a *AppServiceAdapter) MoveItem(ctx context.Context, in MoveItemRequest) (app.DragResult, error) {
	if err := a.ready(); err != nil {
		return app.DragResult{}, err
	}
	itemID := strings.TrimSpace(in.ItemID)
	if itemID == "" {
		return app.DragResult{}, fmt.Errorf("item_id is required: %w", ErrInvalidRequest)
	}
	target, err := parseTarget(in.Target)
	if err != nil {
		return app.DragResult{}, mapAppError("move item", err)
	}
	if target == nil {
		return app.DragResult{}, fmt.Errorf("target is required: %w", ErrInvalidRequest)
	}
	res, err := a.service.MoveItem(ctx, itemID, target)
	if err != nil {
		return app.DragResult{}, mapAppError("move item", err)
	}
	return res, nil
}

// ReplaceItems swaps the full collection.
func (a *AppServiceAdapter) ReplaceItems(ctx context.Context, in ReplaceItemsRequest) (app.Snapshot, error) {
	if err := a.ready(); err != nil {
		return app.Snapshot{}, err
	}
	items := make([]domain.Item, 0, len(in.Items))
	for idx, raw := range in.Items {
		item, err := domain.NewItem(raw.ID, raw.ColumnID, domain.Fields(raw.Fields))
		if err != nil {
			return app.Snapshot{}, mapAppError(fmt.Sprintf("replace items[%d]", idx), err)
		}
		items = append(items, item)
	}
	snap, err := a.service.ReplaceItems(ctx, items)
	if err != nil {
		return app.Snapshot{}, mapAppError("replace items", err)
	}
	return snap, nil
}

// Subscribe streams committed snapshots.
func (a *AppServiceAdapter) Subscribe(buffer int) (<-chan app.Snapshot, func()) {
	return a.service.Subscribe(buffer)
}

// ready reports whether the adapter has a backing service.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrUnavailable)
	}
	return nil
}

// parseTarget converts one transport target.
func parseTarget(in *TargetRequest) (*board.Target, error) {
	if in == nil {
		return nil, nil
	}
	return board.ParseTarget(in.Kind, in.ID, in.ColumnID)
}

// mapAppError maps app/board/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, board.ErrDragActive):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrConflict, err))
	case errors.Is(err, app.ErrNotLoaded):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrUnavailable, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidColumnID),
		errors.Is(err, domain.ErrUnknownColumn),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, board.ErrInvalidSource),
		errors.Is(err, board.ErrInvalidTarget),
		errors.Is(err, app.ErrInvalidSnapshot):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

var (
	_ BoardService = (*AppServiceAdapter)(nil)
	_ BoardWatcher = (*AppServiceAdapter)(nil)
)
