package board

import "github.com/charmbracelet/log"

// resolver applies intents to the store for one active drag.
type resolver struct {
	store   *Store
	columns map[string]struct{}
	logger  *log.Logger
	last    Intent
}

// reset forgets the previous intent. It runs on every drag start and end.
func (r *resolver) reset() {
	r.last = Intent{}
}

// hover applies at most one mutation for a drag-over intent. A card intent
// identical to the previous event is a no-op, which keeps a pointer resting on
// a sibling from swapping the pair back and forth. Any other event in between,
// such as a hover on the dragged card itself, ends the repeat.
func (r *resolver) hover(activeID string, intent Intent) bool {
	repeat := intent == r.last
	r.last = intent
	switch intent.Kind {
	case IntentHoverColumn:
		return r.toColumn(activeID, intent)
	case IntentHoverItem:
		if intent.ItemID == activeID {
			r.logger.Debug("skip self hover", "item", activeID)
			return false
		}
		if repeat {
			return false
		}
		if !r.store.MoveRelativeTo(activeID, intent.ItemID) {
			r.logger.Debug("skip hover on unknown item", "item", activeID, "anchor", intent.ItemID)
			return false
		}
		return true
	default:
		return false
	}
}

// drop performs the final reconciliation for drag end. A column drop always
// reassigns so a drag without intermediate hovers still lands. A card drop
// follows the hover rule. Everything else is a cancel.
func (r *resolver) drop(activeID string, intent Intent) bool {
	switch intent.Kind {
	case IntentHoverColumn:
		return r.toColumn(activeID, intent)
	case IntentHoverItem:
		return r.hover(activeID, intent)
	default:
		return false
	}
}

// accepts reports whether intent is a drop on a known column or on a known card
// other than the dragged one.
func (r *resolver) accepts(activeID string, intent Intent) bool {
	if r.store.Index(activeID) < 0 {
		return false
	}
	switch intent.Kind {
	case IntentHoverColumn:
		_, ok := r.columns[intent.ColumnID]
		return ok
	case IntentHoverItem:
		return intent.ItemID != activeID && r.store.Index(intent.ItemID) >= 0
	default:
		return false
	}
}

// toColumn reassigns the active item when the column is known and differs.
func (r *resolver) toColumn(activeID string, intent Intent) bool {
	if _, ok := r.columns[intent.ColumnID]; !ok {
		r.logger.Debug("skip hover on unknown column", "item", activeID, "column", intent.ColumnID)
		return false
	}
	return r.store.ReassignColumn(activeID, intent.ColumnID)
}
