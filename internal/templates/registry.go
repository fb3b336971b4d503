package templates

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCorpus     = errors.New("template corpus is empty")
	ErrInvalidTemplate = errors.New("invalid query template")
)

// Registry is the read-only template corpus handed to the engine. It is safe
// for concurrent use because nothing mutates it after NewRegistry returns.
type Registry struct {
	templates []QueryTemplate
	byID      map[string]int
}

// NewRegistry validates the corpus and copies it. Every placeholder in a
// template's SQL must be a known slot and must be declared in Parameters.
func NewRegistry(corpus []QueryTemplate) (*Registry, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	r := &Registry{
		templates: make([]QueryTemplate, 0, len(corpus)),
		byID:      make(map[string]int, len(corpus)),
	}

	for _, t := range corpus {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidTemplate, t.ID)
		}
		r.byID[t.ID] = len(r.templates)
		r.templates = append(r.templates, t)
	}

	return r, nil
}

func validate(t QueryTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTemplate)
	}
	if t.SQL == "" {
		return fmt.Errorf("%w: template %q has no sql", ErrInvalidTemplate, t.ID)
	}
	if t.Confidence < 0 || t.Confidence > 1 {
		return fmt.Errorf("%w: template %q confidence %.2f outside [0,1]", ErrInvalidTemplate, t.ID, t.Confidence)
	}
	for _, p := range t.Parameters {
		if !p.Known() {
			return fmt.Errorf("%w: template %q declares unknown parameter %q", ErrInvalidTemplate, t.ID, p)
		}
	}
	for _, p := range t.Placeholders() {
		if !p.Known() {
			return fmt.Errorf("%w: template %q uses unknown placeholder {{%s}}", ErrInvalidTemplate, t.ID, p)
		}
		if !t.HasParam(p) {
			return fmt.Errorf("%w: template %q uses undeclared placeholder {{%s}}", ErrInvalidTemplate, t.ID, p)
		}
	}
	return nil
}

// All returns the templates in corpus order. Callers must not modify them.
func (r *Registry) All() []QueryTemplate {
	return r.templates
}

func (r *Registry) Len() int {
	return len(r.templates)
}

func (r *Registry) Get(id string) (QueryTemplate, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return QueryTemplate{}, false
	}
	return r.templates[idx], true
}

// Examples flattens every template's examples in corpus order.
func (r *Registry) Examples() []string {
	var out []string
	for _, t := range r.templates {
		out = append(out, t.Examples...)
	}
	return out
}

// Default builds the registry from the shipped corpus.
func Default() (*Registry, error) {
	return NewRegistry(Corpus())
}

// MustDefault panics when the shipped corpus is invalid; call it at startup.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(fmt.Sprintf("templates: %v", err))
	}
	return r
}
