package table

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/validation"
)

// CellKind tells renderers how to present a cell.
type CellKind string

const (
	CellText        CellKind = "text"
	CellPlaceholder CellKind = "placeholder"
	CellBadge       CellKind = "badge"
	CellLink        CellKind = "link"
	CellImage       CellKind = "image"
	CellTruncated   CellKind = "truncated"
	CellNumber      CellKind = "number"
	CellDate        CellKind = "date"
)

const (
	Placeholder = "-"
	YesLabel    = "Oui"
	NoLabel     = "Non"
	DateLayout  = "02/01/2006"
	// TruncateAt is the rune count kept by truncated cells.
	TruncateAt = 50
)

// Cell is a render-ready table cell. Title carries the full text for
// truncated cells; Variant is a badge style hint.
type Cell struct {
	Kind    CellKind `json:"kind,omitempty"`
	Text    string   `json:"text,omitempty"`
	Title   string   `json:"title,omitempty"`
	Href    string   `json:"href,omitempty"`
	Src     string   `json:"src,omitempty"`
	Variant string   `json:"variant,omitempty"`
	Invalid bool     `json:"invalid,omitempty"`
}

// Renderer formats cells. The zero value is not usable; use NewRenderer.
type Renderer struct {
	printer  *message.Printer
	strip    *bluemonday.Policy
	labels   map[string]map[string]string
	truncate int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLanguage sets the locale used for number formatting.
func WithLanguage(tag language.Tag) RendererOption {
	return func(r *Renderer) {
		r.printer = message.NewPrinter(tag)
	}
}

// WithTruncate overrides TruncateAt.
func WithTruncate(n int) RendererOption {
	return func(r *Renderer) {
		if n > 0 {
			r.truncate = n
		}
	}
}

// WithRelationLabels registers the labels shown for ids of entity.
func WithRelationLabels(entity string, candidates []relation.Candidate) RendererOption {
	return func(r *Renderer) {
		labels := make(map[string]string, len(candidates))
		for _, c := range candidates {
			labels[c.Value] = c.Label
		}
		r.labels[entity] = labels
	}
}

// NewRenderer constructs a cell renderer. Numbers default to English
// grouping.
func NewRenderer(options ...RendererOption) *Renderer {
	r := &Renderer{
		printer:  message.NewPrinter(language.English),
		strip:    bluemonday.StrictPolicy(),
		labels:   make(map[string]map[string]string),
		truncate: TruncateAt,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RenderCell formats field for record with a default renderer.
func RenderCell(field model.FieldConfig, record map[string]any) Cell {
	return NewRenderer().Cell(field, record)
}

// Cell formats the value of field in record. It never fails: missing values
// and unparseable dates degrade to placeholders.
func (r *Renderer) Cell(field model.FieldConfig, record map[string]any) Cell {
	value, ok := Lookup(record, field.Key)
	if !ok || value == nil {
		return Cell{Kind: CellPlaceholder, Text: Placeholder}
	}

	switch field.Type {
	case model.FieldTypeBoolean:
		if truthy(value) {
			return Cell{Kind: CellBadge, Text: YesLabel, Variant: "success"}
		}
		return Cell{Kind: CellBadge, Text: NoLabel, Variant: "secondary"}
	case model.FieldTypeDate:
		t, ok := schema.ParseDate(value)
		if !ok {
			return Cell{Kind: CellDate, Text: schema.InvalidDateLabel, Invalid: true}
		}
		return Cell{Kind: CellDate, Text: t.Format(DateLayout)}
	case model.FieldTypeEmail:
		text := fmt.Sprint(value)
		return Cell{Kind: CellLink, Text: text, Href: "mailto:" + text}
	case model.FieldTypeURL:
		text := fmt.Sprint(value)
		if !isWebURL(text) {
			return Cell{Kind: CellText, Text: text}
		}
		return Cell{Kind: CellLink, Text: text, Href: text}
	case model.FieldTypeImage:
		return Cell{Kind: CellImage, Src: fmt.Sprint(value), Text: field.Label}
	case model.FieldTypeTextarea, model.FieldTypeRichText:
		text := fmt.Sprint(value)
		if field.Type == model.FieldTypeRichText {
			text = strings.TrimSpace(html.UnescapeString(r.strip.Sanitize(text)))
		}
		return r.truncated(text)
	case model.FieldTypeSelect:
		return Cell{Kind: CellBadge, Text: field.OptionLabel(fmt.Sprint(value)), Variant: "outline"}
	case model.FieldTypeRelation:
		return Cell{Kind: CellBadge, Text: r.relationText(field, value), Variant: "outline"}
	case model.FieldTypeNumber:
		if f, ok := toNumber(value); ok {
			return Cell{Kind: CellNumber, Text: r.formatNumber(f)}
		}
		return Cell{Kind: CellText, Text: fmt.Sprint(value)}
	default:
		return Cell{Kind: CellText, Text: fmt.Sprint(value)}
	}
}

func (r *Renderer) truncated(text string) Cell {
	if utf8.RuneCountInString(text) <= r.truncate {
		return Cell{Kind: CellTruncated, Text: text, Title: text}
	}
	runes := []rune(text)
	return Cell{Kind: CellTruncated, Text: string(runes[:r.truncate]) + "...", Title: text}
}

func (r *Renderer) formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return r.printer.Sprintf("%d", int64(f))
	}
	return r.printer.Sprint(number.Decimal(f))
}

func (r *Renderer) relationText(field model.FieldConfig, value any) string {
	displayField := ""
	entity := ""
	if field.Relation != nil {
		displayField = field.Relation.DisplayField
		entity = field.Relation.Entity
	}
	one := func(v any) string {
		if obj, ok := v.(map[string]any); ok {
			return relation.Label(obj, displayField)
		}
		id := fmt.Sprint(v)
		if label, ok := r.labels[entity][id]; ok && label != "" {
			return label
		}
		return id
	}
	switch items := value.(type) {
	case []any:
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, one(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, one(item))
		}
		return strings.Join(parts, ", ")
	default:
		return one(value)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes", "oui":
			return true
		}
	}
	return false
}

func toNumber(value any) (float64, bool) {
	if f, ok := validation.ToFloat(value); ok {
		return f, true
	}
	return 0, false
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
