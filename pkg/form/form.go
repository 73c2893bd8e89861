package form

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/validation"
)

var (
	// ErrInvalid is returned by Submit when the values fail validation.
	// Field messages are available through Errors.
	ErrInvalid = errors.New("form: validation failed")
	// ErrSubmitPending is returned when a submission is already in flight.
	ErrSubmitPending = errors.New("form: submission already pending")
)

// SubmitFunc receives the validated payload.
type SubmitFunc func(ctx context.Context, payload map[string]any) error

// Option customises a Form.
type Option func(*Form)

// WithUploader replaces the FilenameUploader used for file controls.
func WithUploader(uploader Uploader) Option {
	return func(f *Form) {
		if uploader != nil {
			f.uploader = uploader
		}
	}
}

// WithSanitizer sets the policy applied to rich-text values on decode.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(f *Form) {
		if policy != nil {
			f.sanitizer = policy
		}
	}
}

// WithRelationFetcher sets the source for relation candidates.
func WithRelationFetcher(fetcher relation.Fetcher) Option {
	return func(f *Form) {
		f.fetcher = fetcher
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form holds the editable state for one record of an entity.
type Form struct {
	cfg    model.AdminConfig
	entity schema.Entity

	uploader  Uploader
	sanitizer *bluemonday.Policy
	fetcher   relation.Fetcher
	logger    *zap.Logger

	mu           sync.RWMutex
	initial      map[string]any
	initialID    uintptr
	values       map[string]any
	errors       map[string][]string
	invalidDates map[string]struct{}

	pending atomic.Bool
}

// New creates the form state for cfg, validated against entity. initial may
// be nil for create forms.
func New(cfg model.AdminConfig, entity schema.Entity, initial map[string]any, options ...Option) *Form {
	f := &Form{
		cfg:       model.Clone(cfg),
		entity:    entity,
		uploader:  FilenameUploader{},
		sanitizer: bluemonday.UGCPolicy(),
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	f.SetInitial(initial)
	return f
}

// Config returns the admin configuration backing the form.
func (f *Form) Config() model.AdminConfig {
	return model.Clone(f.cfg)
}

// SetInitial binds new initial data. The values reset only when data is a
// different map than the one currently bound; it reports whether they did.
func (f *Form) SetInitial(data map[string]any) bool {
	id := mapIdentity(data)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values != nil && id == f.initialID {
		return false
	}
	f.initial = data
	f.initialID = id
	f.resetLocked()
	return true
}

// Reset restores the bound initial data and clears errors.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

// Clear unsets every value, so only what is bound afterwards survives a
// submission. Keys of the initial data come out of Payload as nil.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[string]any, len(f.entity.Properties))
	f.errors = nil
	f.invalidDates = make(map[string]struct{})
}

func (f *Form) resetLocked() {
	f.values = make(map[string]any, len(f.entity.Properties))
	f.errors = nil
	f.invalidDates = make(map[string]struct{})
	for _, prop := range f.entity.Properties {
		value, ok := f.initial[prop.Key]
		if !ok || value == nil {
			continue
		}
		inner, _ := prop.Node.Unwrap()
		if inner.Kind == schema.KindDate {
			formatted := FormatDate(value)
			if formatted == "" {
				f.invalidDates[prop.Key] = struct{}{}
				continue
			}
			value = formatted
		}
		f.values[prop.Key] = value
	}
}

// Set binds a single value. Strings are coerced according to the schema kind;
// other values are stored as given, except dates which are normalised.
func (f *Form) Set(key string, value any) error {
	prop, ok := f.entity.Lookup(key)
	if !ok {
		return fmt.Errorf("form: %w: %s", schema.ErrUnknownProperty, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(prop, value)
	return nil
}

func (f *Form) setLocked(prop schema.Property, value any) {
	delete(f.invalidDates, prop.Key)
	field, _ := f.cfg.Field(prop.Key)
	multiple := field.Relation != nil && field.Relation.Multiple

	var raw []string
	switch v := value.(type) {
	case nil:
		delete(f.values, prop.Key)
		return
	case string:
		raw = []string{v}
	case []string:
		raw = v
	default:
		inner, _ := prop.Node.Unwrap()
		if inner.Kind == schema.KindDate {
			formatted := FormatDate(v)
			if formatted == "" {
				f.invalidDates[prop.Key] = struct{}{}
				delete(f.values, prop.Key)
				return
			}
			f.values[prop.Key] = formatted
			return
		}
		f.values[prop.Key] = v
		return
	}

	coerced, keep := coerce(prop.Node, raw, multiple)
	if !keep {
		inner, _ := prop.Node.Unwrap()
		if inner.Kind == schema.KindDate && len(raw) > 0 && strings.TrimSpace(raw[0]) != "" {
			f.invalidDates[prop.Key] = struct{}{}
		}
		delete(f.values, prop.Key)
		return
	}
	if field.Type == model.FieldTypeRichText {
		if str, ok := coerced.(string); ok {
			coerced = f.sanitizer.Sanitize(str)
		}
	}
	f.values[prop.Key] = coerced
}

// Decode binds submitted form values. Keys absent from the submission keep
// their current value, except booleans which an unchecked box never sends.
func (f *Form) Decode(values url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, prop := range f.entity.Properties {
		field, ok := f.cfg.Field(prop.Key)
		if ok && !field.Display.ShowInForm {
			continue
		}
		raw, present := values[prop.Key]
		if !present {
			inner, _ := prop.Node.Unwrap()
			if inner.Kind == schema.KindBoolean {
				f.values[prop.Key] = false
			}
			continue
		}
		f.setLocked(prop, raw)
	}
}

// DecodeMultipart binds a multipart submission. File and image fields are
// passed through the configured Uploader.
func (f *Form) DecodeMultipart(ctx context.Context, form *multipart.Form) error {
	if form == nil {
		return nil
	}
	f.Decode(url.Values(form.Value))
	for _, field := range f.cfg.Fields {
		if field.Type != model.FieldTypeFile && field.Type != model.FieldTypeImage {
			continue
		}
		headers := form.File[field.Key]
		if len(headers) == 0 || headers[0] == nil {
			continue
		}
		value, err := f.store(ctx, field.Key, headers[0])
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		if err := f.Set(field.Key, value); err != nil {
			return err
		}
	}
	return nil
}

func (f *Form) store(ctx context.Context, key string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("form: open upload %s: %w", key, err)
	}
	defer file.Close()

	value, err := f.uploader.Store(ctx, Upload{
		Field:       key,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return "", fmt.Errorf("form: store upload %s: %w", key, err)
	}
	return value, nil
}

// Values returns a copy of the bound values.
func (f *Form) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return copyValues(f.values)
}

// Errors returns the field messages from the last validation.
func (f *Form) Errors() map[string][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(f.errors))
	for key, messages := range f.errors {
		out[key] = append([]string(nil), messages...)
	}
	return out
}

// SetErrors records externally produced field messages, typically a server
// side rejection mapped through render.MapErrorPayload.
func (f *Form) SetErrors(errs map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = errs
}

// InvalidDate reports whether key received a date that could not be parsed.
func (f *Form) InvalidDate(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.invalidDates[key]
	return ok
}

// Validate checks the bound values and records the messages.
func (f *Form) Validate() validation.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() validation.Result {
	result := validation.Validate(f.entity, f.values)
	failing := make(map[string]struct{}, len(result.Issues))
	for _, issue := range result.Issues {
		failing[issue.Path] = struct{}{}
	}
	for _, field := range f.cfg.Fields {
		if !field.Required {
			continue
		}
		if _, ok := failing[field.Key]; ok {
			continue
		}
		if str, ok := f.values[field.Key].(string); ok && strings.TrimSpace(str) == "" {
			result.Issues = append(result.Issues, validation.Issue{Path: field.Key, Message: validation.MessageRequired})
		}
	}
	result.Valid = len(result.Issues) == 0
	f.errors = result.FieldErrors()
	return result
}

// Payload returns the bound values restricted to schema keys. A key the
// initial data held that is no longer bound is reported as nil, so an update
// unsets it instead of keeping the stored value.
func (f *Form) Payload() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.payloadLocked()
}

func (f *Form) payloadLocked() map[string]any {
	out := make(map[string]any, len(f.values))
	for _, prop := range f.entity.Properties {
		if value, ok := f.values[prop.Key]; ok {
			out[prop.Key] = value
			continue
		}
		if prev, had := f.initial[prop.Key]; had && prev != nil {
			out[prop.Key] = nil
		}
	}
	return copyValues(out)
}

// Pending reports whether a submission is in flight.
func (f *Form) Pending() bool {
	return f.pending.Load()
}

// Submit validates the bound values and, when they pass, hands the payload
// to submit. Invalid values return ErrInvalid without calling submit. Only one
// submission runs at a time; overlapping calls return ErrSubmitPending.
func (f *Form) Submit(ctx context.Context, submit SubmitFunc) error {
	if !f.pending.CompareAndSwap(false, true) {
		return ErrSubmitPending
	}
	defer f.pending.Store(false)

	f.mu.Lock()
	result := f.validateLocked()
	payload := f.payloadLocked()
	f.mu.Unlock()

	if !result.Valid {
		f.logger.Debug("form submission rejected",
			zap.String("entity", f.cfg.Entity),
			zap.Strings("paths", result.Paths()),
		)
		return ErrInvalid
	}
	if submit == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return submit(ctx, payload)
}

func mapIdentity(data map[string]any) uintptr {
	if data == nil {
		return 0
	}
	return reflect.ValueOf(data).Pointer()
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		switch v := value.(type) {
		case []string:
			out[key] = append([]string(nil), v...)
		case []any:
			out[key] = append([]any(nil), v...)
		default:
			out[key] = v
		}
	}
	return out
}
