package params

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

func decode(t *testing.T, query string) map[string]interface{} {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	doc, err := Decode(values)
	require.NoError(t, err)
	return doc
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  map[string]interface{}
	}{
		{
			name:  "plain",
			query: "status=active",
			want:  map[string]interface{}{"status": "active"},
		},
		{
			name:  "operator",
			query: "age[gt]=30&age[lte]=40",
			want:  map[string]interface{}{"age": map[string]interface{}{"gt": "30", "lte": "40"}},
		},
		{
			name:  "dotted key stays literal",
			query: "person.age[lt]=20",
			want:  map[string]interface{}{"person.age": map[string]interface{}{"lt": "20"}},
		},
		{
			name:  "indexed combinator",
			query: "or[0][person.age]=30&or[1][person.age][lt]=20",
			want: map[string]interface{}{"or": []interface{}{
				map[string]interface{}{"person.age": "30"},
				map[string]interface{}{"person.age": map[string]interface{}{"lt": "20"}},
			}},
		},
		{
			name:  "append brackets",
			query: "select[]=url&select[]=-bytes",
			want:  map[string]interface{}{"select": []interface{}{"url", "-bytes"}},
		},
		{
			name:  "repeated key",
			query: "status=a&status=b",
			want:  map[string]interface{}{"status": []interface{}{"a", "b"}},
		},
		{
			name:  "sparse indexes compacted",
			query: "or[7][a]=2&or[3][a]=1",
			want: map[string]interface{}{"or": []interface{}{
				map[string]interface{}{"a": "1"},
				map[string]interface{}{"a": "2"},
			}},
		},
		{
			name:  "index over limit becomes key",
			query: "or[21][a]=1",
			want:  map[string]interface{}{"or": map[string]interface{}{"21": map[string]interface{}{"a": "1"}}},
		},
		{
			name:  "list turns into object",
			query: "x[0]=a&x[k]=b",
			want:  map[string]interface{}{"x": map[string]interface{}{"0": "a", "k": "b"}},
		},
		{
			name:  "unclosed bracket is literal",
			query: "a[b=1",
			want:  map[string]interface{}{"a[b": "1"},
		},
		{
			name:  "nested list inside operator",
			query: "name[in][]=a&name[in][]=b",
			want:  map[string]interface{}{"name": map[string]interface{}{"in": []interface{}{"a", "b"}}},
		},
		{
			name:  "empty",
			query: "",
			want:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode(t, tt.query))
		})
	}
}

func TestDecode_TooDeep(t *testing.T) {
	values, err := url.ParseQuery("a[b][c][d][e][f][g]=1&ok[1][2][3][4][5]=1")
	require.NoError(t, err)

	_, err = Decode(values)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, model.IssueTooDeep, verr.Issues[0].Code)
	assert.Equal(t, model.Path{"a"}, verr.Issues[0].Path)
}

func TestDecode_CustomDepth(t *testing.T) {
	values := url.Values{"a[b][c]": {"1"}}

	_, err := NewDecoder(1).Decode(values)
	assert.Error(t, err)

	doc, err := NewDecoder(2).Decode(values)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"b": map[string]interface{}{"c": "1"}}}, doc)
}

func TestDecode_Conflict(t *testing.T) {
	_, err := Decode(url.Values{"age": {"3"}, "age[gt]": {"1"}})

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, model.IssueInvalidValue, verr.Issues[0].Code)
	assert.Equal(t, model.Path{"age"}, verr.Issues[0].Path)
}

func TestDecode_PlainAndAppendMerge(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  interface{}
	}{
		{"plain then append", "select=url&select[]=width", []interface{}{"url", "width"}},
		{"repeated plain then append", "select=url&select=bytes&select[]=width", []interface{}{"url", "bytes", "width"}},
		{"append then plain", "select[]=width&select=url", []interface{}{"width", "url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decode(t, tt.query)
			assert.ElementsMatch(t, tt.want, doc["select"])
		})
	}

	// An explicit index or key still conflicts with a plain value.
	_, err := Decode(url.Values{"select": {"url"}, "select[0]": {"width"}})
	assert.Error(t, err)
}

func TestSplitKey(t *testing.T) {
	assert.Equal(t, []string{"a"}, splitKey("a"))
	assert.Equal(t, []string{"a", "b", ""}, splitKey("a[b][]"))
	assert.Equal(t, []string{"a", "b"}, splitKey("a[b]tail"))
	assert.Equal(t, []string{"[a]"}, splitKey("[a]"))
}
