package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/validation"
	"github.com/goliatone/go-admingen/pkg/widgets"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// DefaultMaxAttempts bounds validation passes when no option overrides it.
const DefaultMaxAttempts = 3

const blankChoice = "-"

// Renderer prompts a form page in the terminal and serializes the answers.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	validator         Validator
	maxAttempts       int
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		out:          os.Stdout,
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts every control of a form page. When a validator is set the
// failing fields are prompted again until it passes or the attempts run out.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if page.Kind != render.PageForm {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPage, page.Kind)
	}

	groups := cloneGroups(page.Groups)
	formErrors := page.FormErrors
	if len(opts.Errors) > 0 {
		formErrors = render.MergeFormErrors(formErrors, render.ApplyErrors(page.Config, groups, opts.Errors)...)
	}
	controls := flattenGroups(groups)
	state := NewState(initialValues(controls), controlErrors(controls))

	if page.Title != "" {
		r.info(ctx, page.Title)
	}
	for _, message := range formErrors {
		r.errorLine(ctx, message)
	}

	pending := controls
	for attempt := 1; ; attempt++ {
		for _, control := range pending {
			if err := r.promptControl(ctx, control, state); err != nil {
				return nil, err
			}
		}
		if r.validator == nil {
			break
		}
		state.SetErrors(r.validator(ctx, state.Values()))
		failing := state.Failing()
		if len(failing) == 0 {
			break
		}
		if attempt >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %s", ErrTooManyAttempts, strings.Join(failing, ", "))
		}
		pending = controlsFor(controls, failing)
		if len(pending) == 0 {
			return nil, fmt.Errorf("tui: values rejected for fields without a prompt: %s", strings.Join(failing, ", "))
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptControl(ctx context.Context, control form.Control, state *State) error {
	key := control.Field.Key
	for _, message := range state.ErrorsFor(key) {
		r.errorLine(ctx, control.Field.Label+": "+message)
	}
	message := promptLabel(control)
	help := strings.TrimSpace(control.Field.Description)

	switch control.Widget {
	case widgets.WidgetToggle:
		current, _ := state.Value(key)
		checked, _ := current.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: help})
		if err != nil {
			return err
		}
		state.Set(key, answer)
	case widgets.WidgetDropdown, widgets.WidgetRelationOne:
		if len(control.Choices) == 0 {
			r.info(ctx, message+": "+relation.EmptyLabel)
			return nil
		}
		current, _ := state.Value(key)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      choiceLabels(control.Choices),
			DefaultIndex: choiceIndex(control.Choices, fmt.Sprint(current)),
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(control.Choices) || control.Choices[idx].Value == "" {
			state.Set(key, nil)
			return nil
		}
		state.Set(key, control.Choices[idx].Value)
	case widgets.WidgetRelationChips:
		candidates := chipCandidates(control)
		if len(candidates) == 0 {
			r.info(ctx, message+": "+relation.EmptyLabel)
			return nil
		}
		current, _ := state.Value(key)
		selected, _ := current.([]string)
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  candidateLabels(candidates),
			Defaults: candidateIndices(candidates, selected),
			Help:     help,
		})
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(candidates) {
				ids = append(ids, candidates[idx].Value)
			}
		}
		state.Set(key, ids)
	case widgets.WidgetTextarea, widgets.WidgetRichText:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: stringValue(state, key), Help: help})
		if err != nil {
			return err
		}
		setText(state, key, answer)
	default:
		if control.DateHint != "" {
			r.errorLine(ctx, control.Field.Label+": "+control.DateHint)
		}
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   stringValue(state, key),
			Help:      help,
			Validator: inputValidator(control),
		})
		if err != nil {
			return err
		}
		setText(state, key, answer)
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, message string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+message)
}

func (r *Renderer) errorLine(ctx context.Context, message string) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+message)
}

// inputValidator rejects blank required answers, unparseable numbers and
// unparseable dates before the value reaches the form validator.
func inputValidator(control form.Control) func(string) error {
	required := control.Field.Required
	widget := control.Widget
	return func(answer string) error {
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			if required {
				return errors.New(validation.MessageRequired)
			}
			return nil
		}
		switch widget {
		case widgets.WidgetNumeric:
			if _, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err != nil {
				return errors.New("nombre invalide")
			}
		case widgets.WidgetCalendar:
			if _, ok := schema.ParseDate(trimmed); !ok {
				return errors.New(schema.InvalidDateLabel)
			}
		}
		return nil
	}
}

func promptLabel(control form.Control) string {
	label := control.Field.Label
	if label == "" {
		label = control.Field.Key
	}
	if control.Field.Required {
		label += " *"
	}
	return label
}

func setText(state *State, key, answer string) {
	if strings.TrimSpace(answer) == "" {
		state.Set(key, nil)
		return
	}
	state.Set(key, answer)
}

func stringValue(state *State, key string) string {
	value, ok := state.Value(key)
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func initialValues(controls []form.Control) map[string]any {
	values := make(map[string]any, len(controls))
	for _, control := range controls {
		key := control.Field.Key
		switch control.Widget {
		case widgets.WidgetToggle:
			values[key] = control.Checked
		case widgets.WidgetRelationChips:
			ids := make([]string, 0, len(control.Chips))
			for _, chip := range control.Chips {
				ids = append(ids, chip.Value)
			}
			values[key] = ids
		default:
			if control.Value != "" {
				values[key] = control.Value
			}
		}
	}
	return values
}

func controlErrors(controls []form.Control) map[string][]string {
	errs := make(map[string][]string)
	for _, control := range controls {
		if len(control.Errors) > 0 {
			errs[control.Field.Key] = control.Errors
		}
	}
	return errs
}

func controlsFor(controls []form.Control, keys []string) []form.Control {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	var out []form.Control
	for _, control := range controls {
		if _, ok := wanted[control.Field.Key]; ok {
			out = append(out, control)
		}
	}
	return out
}

func flattenGroups(groups []form.Group) []form.Control {
	var out []form.Control
	for _, group := range groups {
		out = append(out, group.Controls...)
	}
	return out
}

func cloneGroups(groups []form.Group) []form.Group {
	out := make([]form.Group, len(groups))
	for i, group := range groups {
		out[i] = form.Group{Title: group.Title, Controls: append([]form.Control(nil), group.Controls...)}
	}
	return out
}

func choiceLabels(choices []form.Choice) []string {
	out := make([]string, 0, len(choices))
	for _, choice := range choices {
		label := choice.Label
		if label == "" {
			label = blankChoice
		}
		out = append(out, label)
	}
	return out
}

func choiceIndex(choices []form.Choice, value string) int {
	for i, choice := range choices {
		if choice.Value == value {
			return i
		}
	}
	for i, choice := range choices {
		if choice.Selected {
			return i
		}
	}
	return 0
}

// chipCandidates lists the selected chips first, then the remaining choices.
func chipCandidates(control form.Control) []relation.Candidate {
	out := append([]relation.Candidate(nil), control.Chips...)
	for _, choice := range control.Choices {
		out = append(out, relation.Candidate{Value: choice.Value, Label: choice.Label})
	}
	return out
}

func candidateLabels(candidates []relation.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Label)
	}
	return out
}

func candidateIndices(candidates []relation.Candidate, ids []string) []int {
	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	var out []int
	for i, c := range candidates {
		if _, ok := selected[c.Value]; ok {
			out = append(out, i)
		}
	}
	return out
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func encodeForm(values map[string]any) string {
	out := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				out.Add(key, item)
			}
		case []any:
			for _, item := range v {
				out.Add(key, fmt.Sprint(item))
			}
		default:
			out.Set(key, fmt.Sprint(v))
		}
	}
	return out.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []string:
			fmt.Fprintf(&b, "%s=%s\n", key, strings.Join(v, ", "))
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}
