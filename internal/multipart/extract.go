// Package multipart implements the GraphQL multipart request convention:
// file leaves are pulled out of the variables tree, replaced by null, and
// sent as numbered parts referenced from a "map" field.
package multipart

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"anvil-esign/internal/payload"
)

// Pair is an extracted value together with the dotted path it was found at.
type Pair struct {
	Path  string
	Value any
}

// Extract walks tree depth first and collects every value for which match
// returns true. It returns a copy of tree with those values replaced by nil,
// and the extracted pairs in encounter order. tree itself is never modified.
//
// Objects are walked in key order, maps of any type in sorted key order and
// slices by index. Falsy inputs (nil, false, zero numbers, empty strings and
// empty containers) yield no pairs.
func Extract(tree any, match func(any) bool, prefix string) (any, []Pair) {
	if isFalsy(tree) {
		return tree, nil
	}
	var pairs []Pair
	out := extract(tree, match, prefix, &pairs)
	return out, pairs
}

func extract(node any, match func(any) bool, path string, pairs *[]Pair) any {
	if isFalsy(node) {
		return node
	}
	if match(node) {
		*pairs = append(*pairs, Pair{Path: path, Value: node})
		return nil
	}

	switch n := node.(type) {
	case *payload.Object:
		out := payload.NewObject()
		for _, key := range n.Keys() {
			v, _ := n.Get(key)
			out.Set(key, extract(v, match, path+"."+key, pairs))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(n))
		for _, key := range keys {
			out[key] = extract(n[key], match, path+"."+key, pairs)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = extract(v, match, path+"."+strconv.Itoa(i), pairs)
		}
		return out
	default:
		return extractValue(reflect.ValueOf(node), match, path, pairs)
	}
}

// extractValue walks typed maps and slices such as []map[string]any or
// []*payload.FileHandle. They come back as map[string]any and []any.
func extractValue(rv reflect.Value, match func(any) bool, path string, pairs *[]Pair) any {
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})

		out := make(map[string]any, len(keys))
		for _, k := range keys {
			key := fmt.Sprint(k.Interface())
			out[key] = extract(rv.MapIndex(k).Interface(), match, path+"."+key, pairs)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = extract(rv.Index(i).Interface(), match, path+"."+strconv.Itoa(i), pairs)
		}
		return out
	default:
		return rv.Interface()
	}
}

func isFalsy(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case *payload.Object:
		return n.Len() == 0
	case payload.FilePath:
		return n == ""
	case bool:
		return !n
	case string:
		return n == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}
