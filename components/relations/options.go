package relations

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/relation"
)

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

const (
	DefaultRoutePath = "/relations/{entity}"
	DefaultLimit     = 50
	DefaultMaxLimit  = 200
)

type GuardFunc func(r *http.Request) error

// ResolveFunc reports whether entity may be served and which field labels
// its records. An empty display field falls back to name, title and id.
type ResolveFunc func(entity string) (displayField string, ok bool)

type Options struct {
	RoutePath       string
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Resolve         ResolveFunc
	Fetcher         relation.Fetcher
	Logger          *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       DefaultRoutePath,
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    DefaultLimit,
		MaxLimit:        DefaultMaxLimit,
		EmptySearchMode: EmptySearchTop,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchTop
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

// WithFetcher sets the source of related records. It is required.
func WithFetcher(fetcher relation.Fetcher) OptionFn {
	return func(o *Options) {
		o.Fetcher = fetcher
	}
}

// WithResolver restricts the served entities and names their display field.
// Without a resolver every entity is served with the label fallbacks.
func WithResolver(resolve ResolveFunc) OptionFn {
	return func(o *Options) {
		o.Resolve = resolve
	}
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		o.Logger = logger
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
