package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

type M = map[string]interface{}

func TestBuild_FieldOperators(t *testing.T) {
	tests := []struct {
		op    model.Operator
		value interface{}
	}{
		{model.OpEq, "John"},
		{model.OpNe, "John"},
		{model.OpGt, "A"},
		{model.OpGte, "A"},
		{model.OpLt, "A"},
		{model.OpLte, "A"},
		{model.OpRegex, "john"},
		{model.OpOptions, "i"},
		{model.OpExists, true},
		{model.OpSize, int64(2)},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got := Build(M{"data": M{string(tt.op): tt.value}})
			assert.Equal(t, bson.M{"data": bson.M{"$" + string(tt.op): tt.value}}, got)
		})
	}
}

func TestBuild_ListOperators(t *testing.T) {
	for _, op := range []model.Operator{model.OpAll, model.OpIn, model.OpNin} {
		t.Run(string(op), func(t *testing.T) {
			got := Build(M{"data": M{string(op): []interface{}{"John", "Jane"}}})
			assert.Equal(t, bson.M{"data": bson.M{op.Native(): bson.A{"John", "Jane"}}}, got)
		})
	}
}

func TestBuild_Size(t *testing.T) {
	assert.Equal(t, bson.M{"$size": 2}, Build(M{"size": 2}))
	assert.Equal(t, bson.M{"$size": bson.M{"$gt": 2}}, Build(M{"size": M{"gt": 2}}))

	got := Build(M{"data": M{"size": M{"eq": 2, "ne": 2, "gte": 2, "gt": 2, "lte": 2, "lt": 2}}})
	assert.Equal(t, bson.M{"data": bson.M{"$size": bson.M{
		"$eq": 2, "$ne": 2, "$gte": 2, "$gt": 2, "$lte": 2, "$lt": 2,
	}}}, got)
}

func TestBuild_Not(t *testing.T) {
	got := Build(M{"data": M{"not": M{"gt": 30}}})
	assert.Equal(t, bson.M{"data": bson.M{"$not": bson.M{"$gt": 30}}}, got)
}

func TestBuild_Combinators(t *testing.T) {
	for _, op := range []model.Operator{model.OpAnd, model.OpOr, model.OpNor} {
		t.Run(string(op), func(t *testing.T) {
			got := Build(M{string(op): []interface{}{M{"data": 30}, M{"data": M{"lt": 20}}}})

			list, ok := got[op.Native()].(bson.A)
			require.True(t, ok)
			require.Len(t, list, 2)
			assert.Equal(t, bson.M{"data": 30}, list[0])
			assert.Equal(t, bson.M{"data": bson.M{"$lt": 20}}, list[1])
		})
	}
}

func TestBuild_MixedDocument(t *testing.T) {
	got := Build(M{
		"status": "active",
		"name":   M{"regex": "john", "options": "i"},
		"cars":   M{"size": M{"gt": 1}},
		"or":     []interface{}{M{"person.age": 30}, M{"person.age": M{"lt": 20}}},
	})

	assert.Equal(t, bson.M{
		"status": "active",
		"name":   bson.M{"$regex": "john", "$options": "i"},
		"cars":   bson.M{"$size": bson.M{"$gt": 1}},
		"$or":    bson.A{bson.M{"person.age": 30}, bson.M{"person.age": bson.M{"$lt": 20}}},
	}, got)
}

func TestBuild_PreservesOrderAndScalars(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got := Build(M{"createdAt": M{"in": []interface{}{at, at.Add(time.Hour)}}, "width": 1920.0, "gone": nil})

	assert.Equal(t, bson.M{
		"createdAt": bson.M{"$in": bson.A{at, at.Add(time.Hour)}},
		"width":     1920.0,
		"gone":      nil,
	}, got)
}

func TestBuild_OperatorNamedField(t *testing.T) {
	// A field called "size" cannot be told apart from the operator.
	got := Build(M{"meta": M{"size": M{"eq": 3}}})
	assert.Equal(t, bson.M{"meta": bson.M{"$size": bson.M{"$eq": 3}}}, got)
}

func TestBuild_Empty(t *testing.T) {
	assert.Equal(t, bson.M{}, Build(nil))
	assert.Equal(t, bson.M{}, Build(M{}))
}

func TestBuild_AcceptsBSONContainers(t *testing.T) {
	got := Build(M{"and": bson.A{bson.M{"a": bson.M{"gte": 1}}}})
	assert.Equal(t, bson.M{"$and": bson.A{bson.M{"a": bson.M{"$gte": 1}}}}, got)
}

func TestBuild_InvariantViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ierr, ok := r.(*model.InvariantError)
		require.True(t, ok)
		assert.Equal(t, model.Path{"or", 0, "age"}, ierr.Path)
		assert.Contains(t, ierr.Error(), "or[0].age")
	}()

	Build(M{"or": []interface{}{M{"age": struct{}{}}}})
}
