// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"

	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/domain"
)

// ErrInvalidRequest reports malformed gesture or replacement input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrConflict reports operations refused while a drag is active.
var ErrConflict = errors.New("conflict")

// ErrUnavailable reports a board that has not been loaded yet.
var ErrUnavailable = errors.New("board unavailable")

// TargetRequest describes one drop target. An empty ID means no target.
type TargetRequest struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	ColumnID string `json:"column_id,omitempty"`
}

// DragStartRequest captures input for beginning a drag.
type DragStartRequest struct {
	ItemID string `json:"item_id"`
	Source string `json:"source,omitempty"`
}

// DragRequest captures input for drag-over and drag-end events.
type DragRequest struct {
	Target *TargetRequest `json:"target,omitempty"`
}

// MoveItemRequest captures input for a one-shot start, over, end gesture.
type MoveItemRequest struct {
	ItemID string         `json:"item_id"`
	Target *TargetRequest `json:"target"`
}

// ItemInput is one item of a replacement collection.
type ItemInput struct {
	ID       string         `json:"id"`
	ColumnID string         `json:"column_id"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// ReplaceItemsRequest captures a full external replacement of the collection.
type ReplaceItemsRequest struct {
	Items []ItemInput `json:"items"`
}

// ColumnItem is one item of a column projection. Index is its position within the column.
type ColumnItem struct {
	ID       string        `json:"id"`
	ColumnID string        `json:"column_id"`
	Index    int           `json:"index"`
	Title    string        `json:"title"`
	Fields   domain.Fields `json:"fields,omitempty"`
}

// BoardService exposes board queries and gesture events to transports.
type BoardService interface {
	Board(context.Context) (app.Snapshot, error)
	Columns(context.Context) ([]app.SnapshotColumn, error)
	ItemsInColumn(context.Context, string) ([]ColumnItem, error)
	DragStart(context.Context, DragStartRequest) (app.DragResult, error)
	DragOver(context.Context, DragRequest) (app.DragResult, error)
	DragEnd(context.Context, DragRequest) (app.DragResult, error)
	MoveItem(context.Context, MoveItemRequest) (app.DragResult, error)
	ReplaceItems(context.Context, ReplaceItemsRequest) (app.Snapshot, error)
}

// BoardWatcher streams committed snapshots. It is optional for transports.
type BoardWatcher interface {
	Subscribe(buffer int) (<-chan app.Snapshot, func())
}
