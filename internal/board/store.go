package board

import (
	"slices"

	"github.com/hylla/pipeline/internal/domain"
)

// Store holds the canonical ordered item collection. Order in the backing slice
// encodes intra-column sequence. Every accepted mutation swaps in a new slice,
// so collections handed out earlier are never written to.
type Store struct {
	items []domain.Item
}

// NewStore constructs a new value for this package.
func NewStore(items []domain.Item) *Store {
	return &Store{items: domain.CloneItems(items)}
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns a deep snapshot of the full ordered collection.
func (s *Store) Items() []domain.Item {
	out := domain.CloneItems(s.items)
	if out == nil {
		out = []domain.Item{}
	}
	return out
}

// Item returns one item by id.
func (s *Store) Item(id string) (domain.Item, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return domain.Item{}, false
	}
	return s.items[idx].Clone(), true
}

// Index returns the global position of id, or -1.
func (s *Store) Index(id string) int {
	for idx, item := range s.items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

// ItemsInColumn filters the collection by column, preserving global order.
func (s *Store) ItemsInColumn(columnID string) []domain.Item {
	out := make([]domain.Item, 0)
	for _, item := range s.items {
		if item.ColumnID == columnID {
			out = append(out, item.Clone())
		}
	}
	return out
}

// ReassignColumn sets the column of one item and leaves its global position
// alone. It reports false when the item is missing or already in columnID.
// columnID is not checked against the column set here.
func (s *Store) ReassignColumn(itemID, columnID string) bool {
	idx := s.Index(itemID)
	if idx < 0 || s.items[idx].ColumnID == columnID {
		return false
	}
	next := slices.Clone(s.items)
	next[idx].ColumnID = columnID
	s.items = next
	return true
}

// MoveRelativeTo removes itemID and reinserts it at the anchor's position,
// adopting the anchor's column. Moving down lands after the anchor and moving
// up lands before it.
func (s *Store) MoveRelativeTo(itemID, anchorID string) bool {
	if itemID == anchorID {
		return false
	}
	from := s.Index(itemID)
	to := s.Index(anchorID)
	if from < 0 || to < 0 {
		return false
	}

	moved := s.items[from]
	moved.ColumnID = s.items[to].ColumnID
	next := slices.Clone(s.items)
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, moved)
	s.items = next
	return true
}

// replace swaps the full collection.
func (s *Store) replace(items []domain.Item) {
	s.items = domain.CloneItems(items)
}
