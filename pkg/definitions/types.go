package definitions

import "github.com/goliatone/go-admingen/pkg/schema"

type documentFile struct {
	entityFile `yaml:",inline"`
	Entities   []entityFile `json:"entities" yaml:"entities"`
}

type entityFile struct {
	Entity      string         `json:"entity" yaml:"entity"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Fields      []fieldFile    `json:"fields" yaml:"fields"`
	Actions     schema.Actions `json:"actions" yaml:"actions"`
	UI          schema.Layout  `json:"ui" yaml:"ui"`
}

type fieldFile struct {
	Key       string      `json:"key" yaml:"key"`
	Kind      string      `json:"kind" yaml:"kind"`
	Optional  bool        `json:"optional" yaml:"optional"`
	Values    []string    `json:"values" yaml:"values"`
	Items     *fieldFile  `json:"items" yaml:"items"`
	Fields    []fieldFile `json:"fields" yaml:"fields"`
	MinLength *int        `json:"minLength" yaml:"minLength"`
	MaxLength *int        `json:"maxLength" yaml:"maxLength"`
	Min       *float64    `json:"min" yaml:"min"`
	Max       *float64    `json:"max" yaml:"max"`
	Pattern   string      `json:"pattern" yaml:"pattern"`
	Format    string      `json:"format" yaml:"format"`
	Admin     schema.Meta `json:"admin" yaml:"admin"`
}
