package tui

import (
	"strings"
	"time"

	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/domain"
)

// card field keys read from item fields.
const (
	fieldStartAt = "start_at"
	fieldEndAt   = "end_at"
	fieldOwner   = "owner"
	fieldNotes   = "notes"
)

// shortDate formats a date as "Jan 2".
func shortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// longDate formats a date as "Jan 2, 2006".
func longDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// dateRange renders the schedule line of an item, or "" when it has no dates.
func dateRange(fields domain.Fields) string {
	start, hasStart := fields.Time(fieldStartAt)
	end, hasEnd := fields.Time(fieldEndAt)
	switch {
	case hasStart && hasEnd:
		return shortDate(start) + " - " + longDate(end)
	case hasStart:
		return "from " + longDate(start)
	case hasEnd:
		return "until " + longDate(end)
	default:
		return ""
	}
}

// ownerName returns the owner display name of an item.
func ownerName(fields domain.Fields) string {
	return strings.TrimSpace(fields.Map(fieldOwner).String("name"))
}

// initials returns the avatar fallback for a name: its first two characters.
func initials(name string) string {
	rs := []rune(strings.TrimSpace(name))
	if len(rs) > 2 {
		rs = rs[:2]
	}
	return strings.ToUpper(string(rs))
}

// cardMeta renders the secondary card line.
func (m Model) cardMeta(item app.SnapshotItem) string {
	parts := make([]string, 0, 2)
	if m.cardFields.ShowOwner {
		if name := ownerName(item.Fields); name != "" {
			parts = append(parts, initials(name))
		}
	}
	if m.cardFields.ShowDates {
		if dates := dateRange(item.Fields); dates != "" {
			parts = append(parts, dates)
		}
	}
	return strings.Join(parts, " · ")
}

// itemMarkdown builds the detail pane markdown of an item.
func itemMarkdown(item app.SnapshotItem, columnName string) string {
	var b strings.Builder
	b.WriteString("# " + item.Title() + "\n\n")
	b.WriteString("- **Column:** " + columnName + "\n")
	if name := ownerName(item.Fields); name != "" {
		b.WriteString("- **Owner:** " + name + "\n")
	}
	if dates := dateRange(item.Fields); dates != "" {
		b.WriteString("- **Schedule:** " + dates + "\n")
	}
	b.WriteString("- **ID:** `" + item.ID + "`\n")
	if notes := strings.TrimSpace(item.Fields.String(fieldNotes)); notes != "" {
		b.WriteString("\n" + notes + "\n")
	}
	return b.String()
}
