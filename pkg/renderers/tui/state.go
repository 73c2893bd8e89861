package tui

import "sort"

// State tracks collected values and the messages attached to each field
// during one prompting session.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	s := &State{values: make(map[string]any, len(prefill)), errors: make(map[string][]string, len(errs))}
	for key, value := range prefill {
		s.values[key] = value
	}
	for key, messages := range errs {
		s.errors[key] = append([]string(nil), messages...)
	}
	return s
}

// Values returns a copy of the collected values.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Value returns the value collected for key.
func (s *State) Value(key string) (any, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Set stores value under key. A nil value removes the key.
func (s *State) Set(key string, value any) {
	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// ErrorsFor returns the messages attached to key.
func (s *State) ErrorsFor(key string) []string {
	return s.errors[key]
}

// SetErrors replaces the messages of every field.
func (s *State) SetErrors(errs map[string][]string) {
	s.errors = make(map[string][]string, len(errs))
	for key, messages := range errs {
		if len(messages) > 0 {
			s.errors[key] = append([]string(nil), messages...)
		}
	}
}

// Failing lists the keys that carry messages, sorted.
func (s *State) Failing() []string {
	keys := make([]string, 0, len(s.errors))
	for key := range s.errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
