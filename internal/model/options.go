package model

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	Labeler             func(string) string
	DefaultPageSize     int
	DefaultDisplayField string
}

const (
	defaultPageSize     = 10
	defaultDisplayField = "name"
)

func defaultOptions() Options {
	return Options{
		Labeler:             DefaultLabeler,
		DefaultPageSize:     defaultPageSize,
		DefaultDisplayField: defaultDisplayField,
	}
}

func (o Options) withDefaults() Options {
	def := defaultOptions()
	if o.Labeler == nil {
		o.Labeler = def.Labeler
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = def.DefaultPageSize
	}
	if o.DefaultDisplayField == "" {
		o.DefaultDisplayField = def.DefaultDisplayField
	}
	return o
}
