package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/pipeline/internal/board"
	"github.com/hylla/pipeline/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "pipeline.snapshot.v1"

// Snapshot is a read-only copy of the board handed to renderers and transports.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Revision   uint64           `json:"revision"`
	State      board.State      `json:"state"`
	ActiveID   string           `json:"active_id,omitempty"`
	LastOrigin string           `json:"last_origin,omitempty"`
	Columns    []SnapshotColumn `json:"columns"`
	Items      []SnapshotItem   `json:"items"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Position  int    `json:"position"`
	ItemCount int    `json:"item_count"`
}

// SnapshotItem represents snapshot item data used by this package. Position is
// the index in the global ordered collection.
type SnapshotItem struct {
	ID       string        `json:"id"`
	ColumnID string        `json:"column_id"`
	Position int           `json:"position"`
	Fields   domain.Fields `json:"fields,omitempty"`
}

// ExportSnapshot returns the live board stamped with the export time.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.ExportedAt = s.clock().UTC()
	return snap, nil
}

// ImportSnapshot replaces the live collection with the items of snap. The
// column set of the running board is kept.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s.ReplaceItems(ctx, snap.DomainItems())
}

// Validate checks version and identifier integrity.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}
	columnIDs := map[string]struct{}{}
	for i, c := range s.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: columns[%d].id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := columnIDs[c.ID]; exists {
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalidSnapshot, c.ID)
		}
		columnIDs[c.ID] = struct{}{}
	}
	itemIDs := map[string]struct{}{}
	for i, item := range s.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: items[%d].id is required", ErrInvalidSnapshot, i)
		}
		if strings.TrimSpace(item.ColumnID) == "" {
			return fmt.Errorf("%w: items[%d].column_id is required", ErrInvalidSnapshot, i)
		}
		if _, exists := itemIDs[item.ID]; exists {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidSnapshot, item.ID)
		}
		itemIDs[item.ID] = struct{}{}
	}
	return nil
}

// DomainItems returns the items ordered by position.
func (s Snapshot) DomainItems() []domain.Item {
	items := append([]SnapshotItem(nil), s.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out
}

// ItemsInColumn returns the items of one column in board order.
func (s Snapshot) ItemsInColumn(columnID string) []SnapshotItem {
	out := make([]SnapshotItem, 0)
	for _, item := range s.Items {
		if item.ColumnID == columnID {
			out = append(out, item)
		}
	}
	return out
}

// Column returns one column by id.
func (s Snapshot) Column(id string) (SnapshotColumn, bool) {
	for _, column := range s.Columns {
		if column.ID == id {
			return column, true
		}
	}
	return SnapshotColumn{}, false
}

// Item returns one item by id.
func (s Snapshot) Item(id string) (SnapshotItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return SnapshotItem{}, false
}

// buildSnapshot assembles a snapshot from board state.
func buildSnapshot(columns []domain.Column, items []domain.Item, state board.State, activeID string) Snapshot {
	snap := Snapshot{
		Version:  SnapshotVersion,
		State:    state,
		ActiveID: activeID,
		Columns:  make([]SnapshotColumn, 0, len(columns)),
		Items:    make([]SnapshotItem, 0, len(items)),
	}
	counts := make(map[string]int, len(columns))
	for idx, item := range items {
		counts[item.ColumnID]++
		snap.Items = append(snap.Items, snapshotItemFromDomain(item, idx))
	}
	for _, column := range columns {
		sc := snapshotColumnFromDomain(column)
		sc.ItemCount = counts[column.ID]
		snap.Columns = append(snap.Columns, sc)
	}
	return snap
}

// snapshotColumnFromDomain converts a domain column.
func snapshotColumnFromDomain(c domain.Column) SnapshotColumn {
	return SnapshotColumn{
		ID:       c.ID,
		Name:     c.Name,
		Color:    c.Color,
		Position: c.Position,
	}
}

// snapshotItemFromDomain converts a domain item.
func snapshotItemFromDomain(item domain.Item, position int) SnapshotItem {
	return SnapshotItem{
		ID:       item.ID,
		ColumnID: item.ColumnID,
		Position: position,
		Fields:   item.Fields.Clone(),
	}
}

// toDomain converts a snapshot item.
func (i SnapshotItem) toDomain() domain.Item {
	return domain.Item{
		ID:       strings.TrimSpace(i.ID),
		ColumnID: strings.TrimSpace(i.ColumnID),
		Fields:   i.Fields.Clone(),
	}
}

// Title returns the display name of the item, falling back to its id.
func (i SnapshotItem) Title() string {
	return i.toDomain().Title()
}
