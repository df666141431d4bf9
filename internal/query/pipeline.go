package query

import (
	"fmt"
	"net/url"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Options configure a Pipeline. Whitelist restricts which public fields may
// be used as filters; an empty whitelist allows every public field.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	Whitelist    []string
	Stages       []Stage
}

// Pipeline builds executable queries for one collection. It holds only
// read-only configuration and is safe for concurrent use.
type Pipeline struct {
	schema    Schema
	opts      Options
	whitelist map[string]struct{}
}

func NewPipeline(schema Schema, opts Options) (*Pipeline, error) {
	if err := schema.index(); err != nil {
		return nil, err
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if len(opts.Stages) == 0 {
		opts.Stages = DefaultStages()
	}

	p := &Pipeline{schema: schema, opts: opts}
	if len(opts.Whitelist) > 0 {
		p.whitelist = make(map[string]struct{}, len(opts.Whitelist))
		for _, name := range opts.Whitelist {
			if _, ok := schema.Lookup(name); !ok {
				return nil, fmt.Errorf("query pipeline %s: whitelisted field %q is not a public field", schema.Table, name)
			}
			p.whitelist[name] = struct{}{}
		}
	}
	return p, nil
}

// MustPipeline is NewPipeline for package-level schemas known to be valid.
func MustPipeline(schema Schema, opts Options) *Pipeline {
	p, err := NewPipeline(schema, opts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pipeline) Schema() *Schema { return &p.schema }

func (p *Pipeline) filterable(name string) bool {
	if p.whitelist == nil {
		return true
	}
	_, ok := p.whitelist[name]
	return ok
}

// Build validates raw and compiles it. Every validation failure happens here,
// before the store is touched.
func (p *Pipeline) Build(raw url.Values) (*Query, error) {
	if raw == nil {
		raw = url.Values{}
	}
	spec := Spec{}
	for _, stage := range p.opts.Stages {
		if err := stage(p, raw, &spec); err != nil {
			return nil, err
		}
	}
	return compile(&p.schema, spec), nil
}
