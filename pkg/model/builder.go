package model

import (
	"github.com/goliatone/go-admingen/internal/model"
	"github.com/goliatone/go-admingen/pkg/schema"
)

// Builder converts annotated entity schemas into admin configurations.
type Builder interface {
	Build(entity schema.Entity) (AdminConfig, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler      func(string) string
	pageSize     int
	displayField string
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithDefaultPageSize sets the page size used when an entity declares none.
func WithDefaultPageSize(size int) BuilderOption {
	return func(opts *builderOptions) {
		opts.pageSize = size
	}
}

// WithDefaultDisplayField sets the relation display field fallback.
func WithDefaultDisplayField(field string) BuilderOption {
	return func(opts *builderOptions) {
		opts.displayField = field
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}

	return model.New(model.Options{
		Labeler:             cfg.labeler,
		DefaultPageSize:     cfg.pageSize,
		DefaultDisplayField: cfg.displayField,
	})
}
