package model

// Decorator enriches an admin configuration after the schema-derived
// structure has been built.
type Decorator interface {
	Decorate(*AdminConfig) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*AdminConfig) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(cfg *AdminConfig) error {
	return fn(cfg)
}

// ApplyDecorators runs decorators in order and stops at the first error.
func ApplyDecorators(cfg *AdminConfig, decorators ...Decorator) error {
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(cfg); err != nil {
			return err
		}
	}
	return nil
}
