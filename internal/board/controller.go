package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hylla/pipeline/internal/domain"
)

// State is the controller's drag state.
type State string

// State values.
const (
	StateIdle     State = "idle"
	StateDragging State = "dragging"
)

// DriftPolicy decides what happens to items whose column is not in the column set.
type DriftPolicy string

// DriftPolicy values.
const (
	DriftReject      DriftPolicy = "reject"
	DriftFirstColumn DriftPolicy = "first_column"
)

// ParseDriftPolicy validates a configured drift policy. Empty input means reject.
func ParseDriftPolicy(raw string) (DriftPolicy, error) {
	switch policy := DriftPolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "":
		return DriftReject, nil
	case DriftReject, DriftFirstColumn:
		return policy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, raw)
	}
}

// Outcome reports what one drag event did. Dropped is set when a drag end
// landed on a known target.
type Outcome struct {
	Intent  Intent
	Changed bool
	Dropped bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger routes skipped-event diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers the callback that receives every committed collection.
func WithOnChange(fn func([]domain.Item)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithDriftPolicy sets how items referencing unknown columns are handled.
func WithDriftPolicy(policy DriftPolicy) Option {
	return func(c *Controller) {
		c.drift = policy
	}
}

// Controller owns the board state and drives the drag state machine. It is not
// safe for concurrent use; callers serialize events.
type Controller struct {
	columns  []domain.Column
	store    *Store
	resolver resolver

	state    State
	activeID string
	source   SourceKind

	drift    DriftPolicy
	onChange func([]domain.Item)
	logger   *log.Logger
}

// New constructs a controller from the column set and the initial collection.
func New(columns []domain.Column, items []domain.Item, opts ...Option) (*Controller, error) {
	c := &Controller{
		state:  StateIdle,
		drift:  DriftReject,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if _, err := ParseDriftPolicy(string(c.drift)); err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(columns))
	c.columns = make([]domain.Column, 0, len(columns))
	for _, column := range columns {
		column.ID = strings.TrimSpace(column.ID)
		if column.ID == "" {
			return nil, domain.ErrInvalidID
		}
		if _, dup := known[column.ID]; dup {
			return nil, fmt.Errorf("%w: column %q", domain.ErrDuplicateID, column.ID)
		}
		known[column.ID] = struct{}{}
		c.columns = append(c.columns, column)
	}

	checked, err := c.checkItems(items)
	if err != nil {
		return nil, err
	}
	c.store = NewStore(checked)
	c.resolver = resolver{store: c.store, columns: known, logger: c.logger}
	return c, nil
}

// DragStart moves Idle to Dragging and records the dragged item. A start while
// already dragging is ignored. Unknown ids still enter Dragging and every later
// event degrades to a no-op until drag end.
func (c *Controller) DragStart(itemID string, source SourceKind) Outcome {
	if c.state == StateDragging {
		c.logger.Debug("ignore drag start while dragging", "active", c.activeID, "item", itemID)
		return Outcome{}
	}
	if source == "" {
		source = SourceCard
	}
	c.state = StateDragging
	c.activeID = strings.TrimSpace(itemID)
	c.source = source
	c.resolver.reset()
	if c.store.Index(c.activeID) < 0 {
		c.logger.Debug("drag start on unknown item", "item", c.activeID)
	}
	return Outcome{}
}

// DragOver applies the hover intent for target and republishes on change.
func (c *Controller) DragOver(target *Target) Outcome {
	if c.state != StateDragging {
		return Outcome{}
	}
	intent := Interpret(c.source, target)
	changed := c.resolver.hover(c.activeID, intent)
	if changed {
		c.publish()
	}
	return Outcome{Intent: intent, Changed: changed}
}

// DragEnd clears the active drag, reconciles the final drop target, and
// republishes for every drop on a known column or card, even when the hovers
// already placed the item. A nil target, an unknown target or a drop on the
// dragged item is a cancel that keeps every hover already committed and
// publishes nothing.
func (c *Controller) DragEnd(target *Target) Outcome {
	if c.state != StateDragging {
		return Outcome{}
	}
	activeID, source := c.activeID, c.source
	c.state = StateIdle
	c.activeID = ""
	c.source = ""

	intent := Interpret(source, target)
	accepted := c.resolver.accepts(activeID, intent)
	changed := c.resolver.drop(activeID, intent)
	c.resolver.reset()
	if accepted || changed {
		c.publish()
	}
	return Outcome{Intent: intent, Changed: changed, Dropped: accepted}
}

// Replace swaps the full collection. It is only allowed while idle.
func (c *Controller) Replace(items []domain.Item) error {
	if c.state == StateDragging {
		return ErrDragActive
	}
	checked, err := c.checkItems(items)
	if err != nil {
		return err
	}
	c.store.replace(checked)
	c.publish()
	return nil
}

// ItemsInColumn returns the ordered items of one column.
func (c *Controller) ItemsInColumn(columnID string) []domain.Item {
	return c.store.ItemsInColumn(columnID)
}

// Items returns the full ordered collection.
func (c *Controller) Items() []domain.Item {
	return c.store.Items()
}

// Item returns one item by id.
func (c *Controller) Item(id string) (domain.Item, bool) {
	return c.store.Item(id)
}

// Columns returns the column set in board order.
func (c *Controller) Columns() []domain.Column {
	return append([]domain.Column(nil), c.columns...)
}

// Column returns one column by id.
func (c *Controller) Column(id string) (domain.Column, bool) {
	idx := domain.ColumnIndex(c.columns, id)
	if idx < 0 {
		return domain.Column{}, false
	}
	return c.columns[idx], true
}

// ActiveID returns the dragged item id, or "" while idle.
func (c *Controller) ActiveID() string {
	return c.activeID
}

// State returns the current drag state.
func (c *Controller) State() State {
	return c.state
}

// publish hands a snapshot of the collection to the change callback.
func (c *Controller) publish() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.store.Items())
}

// checkItems trims and validates ids and applies the drift policy. Ids are
// trimmed so they match the trimmed ids drag events carry.
func (c *Controller) checkItems(items []domain.Item) ([]domain.Item, error) {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		item.ColumnID = strings.TrimSpace(item.ColumnID)
		if item.ID == "" {
			return nil, domain.ErrInvalidID
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: item %q", domain.ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}

		if domain.ColumnIndex(c.columns, item.ColumnID) < 0 {
			if c.drift != DriftFirstColumn || len(c.columns) == 0 {
				return nil, fmt.Errorf("%w: item %q references %q", domain.ErrUnknownColumn, item.ID, item.ColumnID)
			}
			c.logger.Warn("reassign item with unknown column", "item", item.ID, "column", item.ColumnID, "to", c.columns[0].ID)
			item.ColumnID = c.columns[0].ID
		}
		out = append(out, item)
	}
	return out, nil
}
