package board

import (
	"fmt"
	"strings"
)

// SourceKind identifies what is being dragged.
type SourceKind string

// SourceKind values.
const (
	SourceCard   SourceKind = "card"
	SourceColumn SourceKind = "column"
)

// TargetKind identifies what sits under the pointer.
type TargetKind string

// TargetKind values.
const (
	TargetCard   TargetKind = "card"
	TargetColumn TargetKind = "column"
)

// Target is one drop target. Column targets only carry ID; card targets also
// carry the column the card sits in. A nil *Target means no droppable is under
// the pointer.
type Target struct {
	Kind     TargetKind
	ID       string
	ColumnID string
}

// ColumnTarget builds a target for empty column space.
func ColumnTarget(columnID string) *Target {
	return &Target{Kind: TargetColumn, ID: columnID, ColumnID: columnID}
}

// CardTarget builds a target for a card.
func CardTarget(itemID, columnID string) *Target {
	return &Target{Kind: TargetCard, ID: itemID, ColumnID: columnID}
}

// IntentKind classifies one drag event.
type IntentKind int

// IntentKind values.
const (
	IntentNoOp IntentKind = iota
	IntentHoverColumn
	IntentHoverItem
)

// String returns a stable label for logs and transports.
func (k IntentKind) String() string {
	switch k {
	case IntentHoverColumn:
		return "hover_column"
	case IntentHoverItem:
		return "hover_item"
	default:
		return "noop"
	}
}

// Intent is the single move instruction derived from one drag event.
type Intent struct {
	Kind     IntentKind
	ColumnID string
	ItemID   string
}

// NoOp reports whether the intent carries no instruction.
func (i Intent) NoOp() bool {
	return i.Kind == IntentNoOp
}

// Interpret classifies the current drop target for a drag of the given source.
// Only card drags are processed.
func Interpret(source SourceKind, target *Target) Intent {
	if source != SourceCard || target == nil {
		return Intent{}
	}
	id := strings.TrimSpace(target.ID)
	if id == "" {
		return Intent{}
	}
	switch target.Kind {
	case TargetColumn:
		return Intent{Kind: IntentHoverColumn, ColumnID: id}
	case TargetCard:
		return Intent{Kind: IntentHoverItem, ItemID: id, ColumnID: strings.TrimSpace(target.ColumnID)}
	default:
		return Intent{}
	}
}

// ParseSourceKind maps transport input onto a source kind. Empty input means a card.
func ParseSourceKind(raw string) (SourceKind, error) {
	switch SourceKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SourceCard:
		return SourceCard, nil
	case SourceColumn:
		return SourceColumn, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
	}
}

// ParseTarget maps transport input onto a drop target. An empty id yields nil.
func ParseTarget(kind, id, columnID string) (*Target, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	switch TargetKind(strings.ToLower(strings.TrimSpace(kind))) {
	case TargetCard:
		return CardTarget(id, strings.TrimSpace(columnID)), nil
	case TargetColumn:
		return ColumnTarget(id), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, kind)
	}
}
