package query

import (
	"net/url"

	"github.com/syntrixbase/wallpaper/internal/query/config"
	"github.com/syntrixbase/wallpaper/internal/query/params"
	"github.com/syntrixbase/wallpaper/internal/query/schema"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Engine validates and compiles the queries of one route. It is built once at
// route registration and is safe for concurrent use.
type Engine struct {
	schema  *schema.Schema
	decoder *params.Decoder
}

// NewEngine compiles the route schema for kinds. When relations are given
// the "embed" option is accepted for them. A string "_id" field is matched
// as an ObjectID.
func NewEngine(kinds model.FieldKinds, relations map[string]Relation, cfg config.Config) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []schema.Option{
		schema.WithMaxLimit(cfg.MaxLimit),
		schema.WithObjectIDFields(schema.ObjectIDField),
	}
	if len(relations) > 0 {
		ev, err := compileRelations(relations, cfg.MaxDepth, cfg.MaxLimit)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schema.WithExtension(schema.KeyEmbed, ev))
	}

	s, err := schema.Compile(kinds, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		schema:  s,
		decoder: params.NewDecoder(cfg.MaxDepth),
	}, nil
}

// Schema returns the compiled route schema.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// ParseValues decodes a query string and compiles it. Errors are
// *model.ValidationError.
func (e *Engine) ParseValues(values url.Values) (*Plan, error) {
	doc, err := e.decoder.Decode(values)
	if err != nil {
		return nil, err
	}
	return e.ParseDocument(doc)
}

// ParseDocument validates doc and compiles it. Nothing is compiled when doc
// has any issue.
func (e *Engine) ParseDocument(doc map[string]interface{}) (*Plan, error) {
	parsed, err := e.schema.Parse(doc)
	if err != nil {
		return nil, err
	}
	return ParseOptions(parsed), nil
}
