// Package prompt renders race cards into natural-language prompts for external agents.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/yourusername/boat-oracle/internal/models"
)

// Overrides is the TOML layout of a prompt override file
type Overrides struct {
	System    string            `toml:"system"`
	Templates map[string]string `toml:"templates"`
}

// templateData is what every template is executed against
type templateData struct {
	Venue      string
	Date       string
	RaceNumber int
	Title      string
	Entrants   string
}

// Builder renders prompts from parsed templates. It is immutable and safe
// for concurrent use.
type Builder struct {
	templates map[Kind]*template.Template
	system    string
}

// NewBuilder returns a builder with the stock templates
func NewBuilder() *Builder {
	b, err := newBuilder(nil, "")
	if err != nil {
		panic(err)
	}
	return b
}

// LoadBuilder returns a builder with templates overridden from a TOML file.
// An empty path yields the stock templates.
func LoadBuilder(path string) (*Builder, error) {
	if path == "" {
		return NewBuilder(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file '%s': %w", path, err)
	}

	var ov Overrides
	if err := toml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("%w: failed to parse TOML: %v", ErrTemplateInvalid, err)
	}

	overrides := make(map[Kind]string, len(ov.Templates))
	for k, v := range ov.Templates {
		kind := Kind(k)
		if _, ok := defaultTemplates[kind]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPromptKind, k)
		}
		overrides[kind] = v
	}
	return newBuilder(overrides, ov.System)
}

func newBuilder(overrides map[Kind]string, system string) (*Builder, error) {
	b := &Builder{
		templates: make(map[Kind]*template.Template, len(defaultTemplates)),
		system:    DefaultSystemPrompt,
	}
	if system != "" {
		b.system = system
	}

	for kind, text := range defaultTemplates {
		if o, ok := overrides[kind]; ok && strings.TrimSpace(o) != "" {
			text = o
		}
		tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateInvalid, kind, err)
		}
		b.templates[kind] = tmpl
	}
	return b, nil
}

// SystemPrompt returns the system message for chat-style providers
func (b *Builder) SystemPrompt() string {
	return b.system
}

// Build renders the template of the given kind for a race card
func (b *Builder) Build(kind Kind, card *models.RaceCard) (string, error) {
	tmpl, ok := b.templates[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPromptKind, kind)
	}

	data := templateData{
		Venue:      card.Race.VenueName,
		Date:       card.Race.RaceDate,
		RaceNumber: card.Race.RaceNumber,
		Title:      card.Race.DisplayTitle(),
		Entrants:   FormatEntrants(card.Entrants),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateInvalid, kind, err)
	}
	return buf.String(), nil
}

// FormatEntrants renders every entrant's statistics as readable text blocks
func FormatEntrants(entrants []models.Entrant) string {
	blocks := make([]string, len(entrants))
	for i := range entrants {
		blocks[i] = formatEntrant(&entrants[i])
	}
	return strings.Join(blocks, "\n\n")
}

func formatEntrant(e *models.Entrant) string {
	name := orDash(e.Name)
	if e.RegistrationNo != "" {
		name = fmt.Sprintf("%s #%s", name, e.RegistrationNo)
	}

	start := "-"
	if e.HasStartTiming() {
		start = fmt.Sprintf("%.2f", *e.AvgStartTiming)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Boat %d: %s (%s)\n", e.Position, name, orDash(string(e.Rank)))
	fmt.Fprintf(&sb, "  National win rate: %.2f / 2-place: %.1f%%\n", e.WinRateAll, e.PlaceRate2All)
	fmt.Fprintf(&sb, "  Local win rate: %.2f / 2-place: %.1f%%\n", e.WinRateLocal, e.PlaceRate2Local)
	fmt.Fprintf(&sb, "  Motor 2-place: %.1f%% / Boat 2-place: %.1f%%\n", e.MotorRate2, e.BoatRate2)
	fmt.Fprintf(&sb, "  Avg ST: %s / Current series: %s", start, orDash(e.CurrentSeries))
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
