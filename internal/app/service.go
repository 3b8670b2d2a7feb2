package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/pipeline/internal/board"
	"github.com/hylla/pipeline/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DriftPolicy    board.DriftPolicy
	DefaultColumns []domain.Column
}

// Clock returns the current time.
type Clock func() time.Time

// DragResult reports the outcome of one gesture event.
type DragResult struct {
	Intent   string      `json:"intent"`
	Changed  bool        `json:"changed"`
	Dropped  bool        `json:"dropped,omitempty"`
	State    board.State `json:"state"`
	ActiveID string      `json:"active_id,omitempty"`
	Revision uint64      `json:"revision"`
}

// Service owns the board controller and serializes gesture events arriving
// from every transport.
type Service struct {
	mu         sync.Mutex
	catalog    Catalog
	clock      Clock
	logger     *log.Logger
	cfg        ServiceConfig
	ctrl       *board.Controller
	revision   uint64
	lastOrigin string
	subs       map[int]chan Snapshot
	nextSub    int
}

// NewService constructs a new value for this package.
func NewService(catalog Catalog, clock Clock, logger *log.Logger, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.DriftPolicy == "" {
		cfg.DriftPolicy = board.DriftReject
	}
	cfg.DefaultColumns = sanitizeColumns(cfg.DefaultColumns)
	return &Service{
		catalog: catalog,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
		subs:    map[int]chan Snapshot{},
	}
}

// Load builds the board from the catalog. An empty catalog column set falls
// back to the configured default columns. Reloading is refused mid-drag.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	if s.catalog == nil {
		return Snapshot{}, ErrNotLoaded
	}
	columns, err := s.catalog.ListColumns(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list columns: %w", err)
	}
	if len(columns) == 0 {
		columns = append([]domain.Column(nil), s.cfg.DefaultColumns...)
	}
	items, err := s.catalog.ListItems(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list items: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl != nil && s.ctrl.State() == board.StateDragging {
		return Snapshot{}, board.ErrDragActive
	}
	ctrl, err := board.New(columns, items,
		board.WithLogger(s.logger),
		board.WithDriftPolicy(s.cfg.DriftPolicy),
		board.WithOnChange(s.onChange),
	)
	if err != nil {
		return Snapshot{}, err
	}
	s.ctrl = ctrl
	s.lastOrigin = GestureOriginFromContext(ctx).Transport
	s.logger.Info("board loaded", "columns", len(columns), "items", len(items))

	s.revision++
	snap := s.snapshotLocked(ctrl.Items())
	s.broadcastLocked(snap)
	return snap, nil
}

// Snapshot returns a copy of the live board.
func (s *Service) Snapshot(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return s.snapshotLocked(s.ctrl.Items()), nil
}

// Columns returns the column set in board order.
func (s *Service) Columns(_ context.Context) ([]domain.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return nil, ErrNotLoaded
	}
	return s.ctrl.Columns(), nil
}

// ItemsInColumn returns the ordered items of one column.
func (s *Service) ItemsInColumn(_ context.Context, columnID string) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return nil, ErrNotLoaded
	}
	if _, ok := s.ctrl.Column(columnID); !ok {
		return nil, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	return s.ctrl.ItemsInColumn(columnID), nil
}

// DragStart begins a drag of itemID.
func (s *Service) DragStart(ctx context.Context, itemID string, source board.SourceKind) (DragResult, error) {
	return s.apply(ctx, "drag_start", func(ctrl *board.Controller) board.Outcome {
		return ctrl.DragStart(itemID, source)
	})
}

// DragOver reports the current drop target of the active drag.
func (s *Service) DragOver(ctx context.Context, target *board.Target) (DragResult, error) {
	return s.apply(ctx, "drag_over", func(ctrl *board.Controller) board.Outcome {
		return ctrl.DragOver(target)
	})
}

// DragEnd finishes the active drag on target. A nil target cancels.
func (s *Service) DragEnd(ctx context.Context, target *board.Target) (DragResult, error) {
	return s.apply(ctx, "drag_end", func(ctrl *board.Controller) board.Outcome {
		return ctrl.DragEnd(target)
	})
}

// MoveItem runs a complete gesture for itemID as one serialized step: a start
// and a drop on target, which reconciles like a hover followed by the drop.
// It fails when another drag is active or the item is unknown.
func (s *Service) MoveItem(ctx context.Context, itemID string, target *board.Target) (DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return DragResult{}, ErrNotLoaded
	}
	if s.ctrl.State() == board.StateDragging {
		return DragResult{}, board.ErrDragActive
	}
	if _, ok := s.ctrl.Item(itemID); !ok {
		return DragResult{}, fmt.Errorf("item %q: %w", itemID, ErrNotFound)
	}
	s.lastOrigin = GestureOriginFromContext(ctx).Transport

	s.ctrl.DragStart(itemID, board.SourceCard)
	end := s.ctrl.DragEnd(target)
	s.logger.Debug("move item", "item", itemID, "intent", end.Intent.Kind, "changed", end.Changed, "dropped", end.Dropped, "origin", s.lastOrigin)
	return s.resultLocked(end), nil
}

// ReplaceItems swaps the full collection. It is refused mid-drag.
func (s *Service) ReplaceItems(ctx context.Context, items []domain.Item) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return Snapshot{}, ErrNotLoaded
	}
	s.lastOrigin = GestureOriginFromContext(ctx).Transport
	if err := s.ctrl.Replace(items); err != nil {
		return Snapshot{}, err
	}
	s.logger.Info("board replaced", "items", len(items), "origin", s.lastOrigin)
	return s.snapshotLocked(s.ctrl.Items()), nil
}

// Subscribe returns a channel receiving every committed snapshot and a cancel
// func. Slow subscribers miss snapshots rather than blocking the board.
func (s *Service) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// apply runs one controller event under the service lock.
func (s *Service) apply(ctx context.Context, event string, fn func(*board.Controller) board.Outcome) (DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return DragResult{}, ErrNotLoaded
	}
	s.lastOrigin = GestureOriginFromContext(ctx).Transport
	state, activeID, revision := s.ctrl.State(), s.ctrl.ActiveID(), s.revision
	out := fn(s.ctrl)
	if s.revision == revision && (s.ctrl.State() != state || s.ctrl.ActiveID() != activeID) {
		// Publish drag state transitions that committed no mutation.
		s.revision++
		s.broadcastLocked(s.snapshotLocked(s.ctrl.Items()))
	}
	s.logger.Debug(event, "intent", out.Intent.Kind, "changed", out.Changed, "active", s.ctrl.ActiveID(), "origin", s.lastOrigin)
	return s.resultLocked(out), nil
}

// onChange is the controller callback. It runs with s.mu held.
func (s *Service) onChange(items []domain.Item) {
	s.revision++
	s.broadcastLocked(s.snapshotLocked(items))
}

// resultLocked converts an outcome into a transport result.
func (s *Service) resultLocked(out board.Outcome) DragResult {
	return DragResult{
		Intent:   out.Intent.Kind.String(),
		Changed:  out.Changed,
		Dropped:  out.Dropped,
		State:    s.ctrl.State(),
		ActiveID: s.ctrl.ActiveID(),
		Revision: s.revision,
	}
}

// snapshotLocked builds a snapshot of the current board around items.
func (s *Service) snapshotLocked(items []domain.Item) Snapshot {
	snap := buildSnapshot(s.ctrl.Columns(), items, s.ctrl.State(), s.ctrl.ActiveID())
	snap.Revision = s.revision
	snap.LastOrigin = s.lastOrigin
	return snap
}

// broadcastLocked fans a snapshot out to subscribers without blocking.
func (s *Service) broadcastLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// sanitizeColumns drops invalid and duplicate columns and orders by position.
func sanitizeColumns(in []domain.Column) []domain.Column {
	out := make([]domain.Column, 0, len(in))
	seen := map[string]struct{}{}
	for idx, column := range in {
		normalized, err := domain.NewColumn(column.ID, column.Name, column.Color, column.Position)
		if err != nil {
			continue
		}
		if _, ok := seen[normalized.ID]; ok {
			continue
		}
		if normalized.Position == 0 {
			normalized.Position = idx
		}
		seen[normalized.ID] = struct{}{}
		out = append(out, normalized)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}
