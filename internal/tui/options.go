package tui

import (
	"github.com/hylla/pipeline/internal/app"
)

// CardFieldConfig selects the secondary card line contents.
type CardFieldConfig struct {
	ShowOwner bool
	ShowDates bool
}

// Option configures a Model.
type Option func(*Model)

// DefaultCardFieldConfig shows every card field.
func DefaultCardFieldConfig() CardFieldConfig {
	return CardFieldConfig{
		ShowOwner: true,
		ShowDates: true,
	}
}

// WithCardFieldConfig sets the card field visibility.
func WithCardFieldConfig(cfg CardFieldConfig) Option {
	return func(m *Model) {
		m.cardFields = cfg
	}
}

// WithHelpBar toggles the footer key help line.
func WithHelpBar(show bool) Option {
	return func(m *Model) {
		m.showHelpBar = show
	}
}

// WithUpdates makes the model follow snapshots committed by other transports.
func WithUpdates(updates <-chan app.Snapshot) Option {
	return func(m *Model) {
		m.updates = updates
	}
}

// WithServerErrors makes the model report a co-hosted server that stops. The
// channel yields at most one error and is closed when the server exits.
func WithServerErrors(errs <-chan error) Option {
	return func(m *Model) {
		m.serverErrs = errs
	}
}

// WithClipboard replaces the clipboard writer used by the copy key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}
