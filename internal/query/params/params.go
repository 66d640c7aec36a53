// Package params decodes bracket-notation query strings into nested query
// documents, e.g. "age[gt]=30&or[0][name]=x".
package params

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

const (
	// DefaultMaxDepth bounds the number of bracket segments after the root key.
	DefaultMaxDepth = 5
	// DefaultArrayLimit is the highest index decoded as a list position.
	// Larger indexes become object keys.
	DefaultArrayLimit = 20
)

// Decoder turns url.Values into a query document.
type Decoder struct {
	MaxDepth   int
	ArrayLimit int
}

// NewDecoder returns a Decoder with the default array limit. A non-positive
// maxDepth selects DefaultMaxDepth.
func NewDecoder(maxDepth int) *Decoder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Decoder{MaxDepth: maxDepth, ArrayLimit: DefaultArrayLimit}
}

// Decode decodes values with the default limits.
func Decode(values url.Values) (map[string]interface{}, error) {
	return NewDecoder(DefaultMaxDepth).Decode(values)
}

// Decode builds the nested document. Dots in keys are kept literally, so
// "person.age" stays a single field path. Repeated keys become lists and a
// single value stays a string. Failures are returned as
// *model.ValidationError.
func (d *Decoder) Decode(values url.Values) (map[string]interface{}, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	verr := &model.ValidationError{}
	var root interface{} = map[string]interface{}{}
	for _, key := range keys {
		segs := splitKey(key)
		if len(segs)-1 > d.MaxDepth {
			verr.Add(model.IssueTooDeep, model.Path{segs[0]},
				"parameter %q nests deeper than %d levels", key, d.MaxDepth)
			continue
		}
		for _, value := range values[key] {
			next, err := d.insert(root, segs, value)
			if err != nil {
				verr.Add(model.IssueInvalidValue, model.Path{segs[0]}, "parameter %q %v", key, err)
				break
			}
			root = next
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return finalize(root).(map[string]interface{}), nil
}

// splitKey splits "a[b][]" into ["a", "b", ""]. A key without a closed
// bracket pair is a single segment; text after the last pair is ignored.
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}
	segs := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	if len(segs) == 1 {
		return []string{key}
	}
	return segs
}

// list collects indexed values while decoding. Gaps are compacted once the
// whole query is read.
type list struct {
	items map[int]interface{}
	next  int
}

func newList() *list {
	return &list{items: make(map[int]interface{})}
}

func (l *list) toMap() map[string]interface{} {
	m := make(map[string]interface{}, len(l.items))
	for i, v := range l.items {
		m[strconv.Itoa(i)] = v
	}
	return m
}

// index reports whether seg addresses a list position.
func (d *Decoder) index(seg string) (int, bool) {
	if seg == "" {
		return -1, true
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i > d.ArrayLimit || strconv.Itoa(i) != seg {
		return 0, false
	}
	return i, true
}

// insert stores value under segs inside node and returns the node, which is
// replaced when a list has to turn into an object.
func (d *Decoder) insert(node interface{}, segs []string, value string) (interface{}, error) {
	if len(segs) == 0 {
		return appendLeaf(node, value)
	}
	seg := segs[0]

	switch n := node.(type) {
	case nil:
		if _, ok := d.index(seg); ok {
			return d.insert(newList(), segs, value)
		}
		return d.insert(map[string]interface{}{}, segs, value)
	case *list:
		i, ok := d.index(seg)
		if !ok {
			return d.insert(n.toMap(), segs, value)
		}
		if i < 0 {
			i = n.next
		}
		child, err := d.insert(n.items[i], segs[1:], value)
		if err != nil {
			return nil, err
		}
		n.items[i] = child
		if i >= n.next {
			n.next = i + 1
		}
		return n, nil
	case map[string]interface{}:
		if seg == "" {
			return nil, fmt.Errorf("appends to an object")
		}
		child, err := d.insert(n[seg], segs[1:], value)
		if err != nil {
			return nil, err
		}
		n[seg] = child
		return n, nil
	case string, []interface{}:
		// "a=x&a[]=y" appends to the plain values, as qs does.
		if seg != "" {
			return nil, fmt.Errorf("mixes a value with nested keys")
		}
		l := newList()
		for _, v := range plainValues(n) {
			l.items[l.next] = v
			l.next++
		}
		return d.insert(l, segs, value)
	default:
		return nil, fmt.Errorf("mixes a value with nested keys")
	}
}

func plainValues(node interface{}) []interface{} {
	if s, ok := node.(string); ok {
		return []interface{}{s}
	}
	return node.([]interface{})
}

func appendLeaf(node interface{}, value string) (interface{}, error) {
	switch n := node.(type) {
	case nil:
		return value, nil
	case string:
		return []interface{}{n, value}, nil
	case []interface{}:
		return append(n, value), nil
	case *list:
		n.items[n.next] = value
		n.next++
		return n, nil
	default:
		return nil, fmt.Errorf("mixes nested keys with a value")
	}
}

func finalize(node interface{}) interface{} {
	switch n := node.(type) {
	case map[string]interface{}:
		for k, v := range n {
			n[k] = finalize(v)
		}
		return n
	case *list:
		idx := make([]int, 0, len(n.items))
		for i := range n.items {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		out := make([]interface{}, len(idx))
		for j, i := range idx {
			out[j] = finalize(n.items[i])
		}
		return out
	default:
		return n
	}
}
