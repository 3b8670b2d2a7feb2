package domain

import (
	"strconv"
	"strings"
)

// Column represents one named bucket that partitions board items.
type Column struct {
	ID       string
	Name     string
	Color    string
	Position int
}

// NewColumn constructs a new value for this package.
func NewColumn(id, name, color string, position int) (Column, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if position < 0 {
		return Column{}, ErrInvalidPosition
	}
	normalized, err := NormalizeColor(color)
	if err != nil {
		return Column{}, err
	}

	return Column{
		ID:       id,
		Name:     name,
		Color:    normalized,
		Position: position,
	}, nil
}

// NormalizeColor validates a column color tag. Empty tags are allowed; hex tags
// (#RGB or #RRGGBB) are upper-cased and ANSI tags must be in 0..255.
func NormalizeColor(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if strings.HasPrefix(raw, "#") {
		hex := raw[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return "", ErrInvalidColor
		}
		for _, r := range hex {
			switch {
			case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			default:
				return "", ErrInvalidColor
			}
		}
		return "#" + strings.ToUpper(hex), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 255 {
		return "", ErrInvalidColor
	}
	return strconv.Itoa(n), nil
}

// ColumnIndex returns the index of the column with id, or -1.
func ColumnIndex(columns []Column, id string) int {
	for idx, column := range columns {
		if column.ID == id {
			return idx
		}
	}
	return -1
}
