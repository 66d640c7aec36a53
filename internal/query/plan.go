// Package query turns client query documents into MongoDB execution plans.
package query

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Plan is a compiled query: the native filter plus the options to run it
// with. Skip is only set when both Page and Limit are.
type Plan struct {
	Filter bson.M
	Select string
	Sort   bson.D
	Skip   *int64
	Limit  *int64
	Page   *int64
	Embed  []Populate
}

// Populate joins documents of a related collection into the field Path.
type Populate struct {
	Path   string
	Select string
	Match  bson.M
	Sort   bson.D
	Skip   *int64
	Limit  *int64

	// JustOne unwinds the joined list into a single document or null.
	JustOne bool
	// Ordered is accepted for compatibility. Lookups in one pipeline
	// always run in order.
	Ordered  bool
	Populate []Populate

	Collection   string
	LocalField   string
	ForeignField string
}

// Projection renders Select ("a -b") as a MongoDB projection.
func (p *Plan) Projection() bson.D {
	return projection(p.Select)
}

// FindOptions applies sort, skip, limit and projection for Collection.Find.
func (p *Plan) FindOptions() *options.FindOptions {
	opts := options.Find()
	if len(p.Sort) > 0 {
		opts.SetSort(p.Sort)
	}
	if p.Skip != nil {
		opts.SetSkip(*p.Skip)
	}
	if p.Limit != nil {
		opts.SetLimit(*p.Limit)
	}
	if proj := p.Projection(); len(proj) > 0 {
		opts.SetProjection(proj)
	}
	return opts
}

// Pipeline renders the plan as an aggregation, with one $lookup per embed.
func (p *Plan) Pipeline() mongo.Pipeline {
	return stages(p.Filter, p.Sort, p.Skip, p.Limit, p.Embed, projection(p.Select))
}

// lookup renders one populate as a $lookup stage, followed by $unwind when
// JustOne is set.
func (pop *Populate) lookup() []bson.D {
	spec := bson.D{
		{Key: "from", Value: pop.Collection},
		{Key: "localField", Value: pop.LocalField},
		{Key: "foreignField", Value: pop.ForeignField},
	}
	if inner := stages(pop.Match, pop.Sort, pop.Skip, pop.Limit, pop.Populate, projection(pop.Select)); len(inner) > 0 {
		spec = append(spec, bson.E{Key: "pipeline", Value: inner})
	}
	spec = append(spec, bson.E{Key: "as", Value: pop.Path})

	out := []bson.D{{{Key: "$lookup", Value: spec}}}
	if pop.JustOne {
		out = append(out, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + pop.Path},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	return out
}

// stages builds match, sort, skip, limit, lookups and project, omitting the
// empty ones. Lookups run before the projection so local fields are still
// present when joining.
func stages(match bson.M, sort bson.D, skip, limit *int64, embed []Populate, proj bson.D) mongo.Pipeline {
	var pipeline mongo.Pipeline
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	if len(sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if skip != nil {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: *skip}})
	}
	if limit != nil {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: *limit}})
	}
	for i := range embed {
		pipeline = append(pipeline, embed[i].lookup()...)
	}
	if len(proj) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: proj}})
	}
	return pipeline
}

func projection(sel string) bson.D {
	fields := strings.Fields(sel)
	if len(fields) == 0 {
		return nil
	}
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			out = append(out, bson.E{Key: name, Value: 0})
			continue
		}
		out = append(out, bson.E{Key: f, Value: 1})
	}
	return out
}

// sortDoc converts ["a", "-b"] into {a: 1, b: -1}, keeping order.
func sortDoc(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			out = append(out, bson.E{Key: name, Value: -1})
			continue
		}
		out = append(out, bson.E{Key: f, Value: 1})
	}
	return out
}
