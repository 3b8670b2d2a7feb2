// Package sample generates a deterministic demo pipeline for seeding the catalog.
package sample

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/pipeline/internal/domain"
)

// Default sizes of the generated pipeline.
const (
	DefaultOwnerCount = 6
	DefaultItemCount  = 18
)

// window bounds how far start and end dates stray from now.
const window = 182 * 24 * time.Hour

// DefaultColumns returns the stock Planned, In Progress, Done columns.
func DefaultColumns() []domain.Column {
	return []domain.Column{
		{ID: "planned", Name: "Planned", Color: "#6B7280", Position: 0},
		{ID: "in_progress", Name: "In Progress", Color: "#F59E0B", Position: 1},
		{ID: "done", Name: "Done", Color: "#10B981", Position: 2},
	}
}

// Owner is one generated card owner.
type Owner struct {
	ID    string
	Name  string
	Image string
}

// Fields returns the owner as an item payload value.
func (o Owner) Fields() map[string]any {
	return map[string]any{"id": o.ID, "name": o.Name, "image": o.Image}
}

// Generator produces owners and items from one seeded stream.
type Generator struct {
	rng *rand.Rand
	src *rand.ChaCha8
	now time.Time
}

// New returns a generator whose output depends only on seed and now.
func New(seed uint64, now time.Time) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	src := rand.NewChaCha8(key)
	return &Generator{rng: rand.New(src), src: src, now: now.UTC()}
}

// Owners generates count owners.
func (g *Generator) Owners(count int) []Owner {
	out := make([]Owner, 0, max(count, 0))
	for range count {
		id := g.id()
		out = append(out, Owner{
			ID:    id,
			Name:  g.pick(firstNames) + " " + g.pick(lastNames),
			Image: "https://i.pravatar.cc/150?u=" + id,
		})
	}
	return out
}

// Items generates count items spread randomly across columns.
func (g *Generator) Items(count int, columns []domain.Column, owners []Owner) ([]domain.Item, error) {
	if count <= 0 {
		return []domain.Item{}, nil
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("generate items: %w", domain.ErrUnknownColumn)
	}
	out := make([]domain.Item, 0, count)
	for range count {
		column := columns[g.rng.IntN(len(columns))]
		fields := domain.Fields{
			"name":     g.buzzPhrase(),
			"start_at": g.now.Add(-g.offset()),
			"end_at":   g.now.Add(g.offset()),
			"notes":    g.notes(),
		}
		if len(owners) > 0 {
			fields["owner"] = owners[g.rng.IntN(len(owners))].Fields()
		}
		item, err := domain.NewItem(g.id(), column.ID, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Pipeline generates the default owner set and count items.
func (g *Generator) Pipeline(count int, columns []domain.Column) ([]domain.Item, error) {
	return g.Items(count, columns, g.Owners(DefaultOwnerCount))
}

// id draws a UUID from the seeded stream.
func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// offset returns a random duration within the date window, rounded to minutes.
func (g *Generator) offset() time.Duration {
	return time.Duration(g.rng.Int64N(int64(window))).Truncate(time.Minute)
}

// buzzPhrase returns a capitalized verb, adjective, noun phrase.
func (g *Generator) buzzPhrase() string {
	phrase := g.pick(verbs) + " " + g.pick(adjectives) + " " + g.pick(nouns)
	return strings.ToUpper(phrase[:1]) + phrase[1:]
}

// notes returns a short markdown brief.
func (g *Generator) notes() string {
	return fmt.Sprintf("## Brief\n\n- Channel: **%s**\n- Deliverables: %d posts\n\nKeep the tone %s.",
		g.pick(channels), 1+g.rng.IntN(5), g.pick(adjectives))
}

// pick returns one element of list.
func (g *Generator) pick(list []string) string {
	return list[g.rng.IntN(len(list))]
}

var (
	verbs = []string{
		"aggregate", "benchmark", "deploy", "disintermediate", "drive", "empower",
		"engage", "envisioneer", "facilitate", "grow", "harness", "incubate",
		"leverage", "monetize", "orchestrate", "productize", "reinvent", "scale",
		"streamline", "synergize", "target", "transform", "unleash", "visualize",
	}
	adjectives = []string{
		"B2C", "bleeding-edge", "collaborative", "cross-platform", "customized",
		"distributed", "dynamic", "frictionless", "holistic", "innovative",
		"integrated", "intuitive", "mission-critical", "proactive", "real-time",
		"robust", "scalable", "seamless", "sticky", "viral", "visionary",
	}
	nouns = []string{
		"action-items", "channels", "communities", "content", "deliverables",
		"e-markets", "experiences", "functionalities", "initiatives", "interfaces",
		"markets", "metrics", "mindshare", "models", "networks", "partnerships",
		"platforms", "relationships", "solutions", "synergies", "users", "web-readiness",
	}
	channels   = []string{"Instagram", "TikTok", "YouTube", "Twitch", "Newsletter", "Podcast"}
	firstNames = []string{
		"Ada", "Bram", "Chioma", "Dario", "Elif", "Farah", "Goran", "Hana",
		"Ines", "Jonas", "Kaito", "Leila", "Mateo", "Noor", "Oskar", "Priya",
	}
	lastNames = []string{
		"Abara", "Berg", "Castillo", "Dubois", "Eriksen", "Fujita", "Greco",
		"Haddad", "Ivanova", "Jensen", "Kowalski", "Lindqvist", "Moreau", "Novak",
	}
)
