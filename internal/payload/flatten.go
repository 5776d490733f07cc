package payload

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// TagName is the struct tag read by Flatten and by the map decoders.
//
// The tag value is the snake_case source name followed by options:
//
//	omitzero  drop the field when it holds its zero value
//	omitnil   drop a nil map or slice (otherwise emitted as {} or [])
//	remain    a map[string]any whose entries are emitted verbatim
//
// Nil pointers and nil interfaces are always dropped.
const TagName = "anvil"

// Defaulter is implemented by models that fill in default values before
// they are serialized.
type Defaulter interface {
	SetDefaults()
}

type fieldTag struct {
	name     string
	omitZero bool
	omitNil  bool
	remain   bool
}

func parseTag(field reflect.StructField) (fieldTag, bool) {
	raw, ok := field.Tag.Lookup(TagName)
	if !ok {
		return fieldTag{name: SnakeCase(field.Name)}, true
	}
	if raw == "-" {
		return fieldTag{}, false
	}

	parts := strings.Split(raw, ",")
	tag := fieldTag{name: parts[0]}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitzero":
			tag.omitZero = true
		case "omitnil":
			tag.omitNil = true
		case "remain":
			tag.remain = true
		}
	}
	if tag.name == "" && !tag.remain {
		tag.name = SnakeCase(field.Name)
	}
	return tag, true
}

// Flatten converts a model into a payload tree of *Object, []any and scalar
// leaves. Struct fields are renamed with FieldName, while keys of plain maps
// are kept verbatim and sorted. *FileHandle and FilePath values are kept as
// leaves so the multipart extractor can find them.
func Flatten(v any) (any, error) {
	return flattenValue(reflect.ValueOf(v))
}

// FlattenObject flattens a struct model and returns the resulting object.
func FlattenObject(v any) (*Object, error) {
	tree, err := Flatten(v)
	if err != nil {
		return nil, err
	}
	obj, ok := tree.(*Object)
	if !ok {
		return nil, fmt.Errorf("payload: %T does not flatten to an object", v)
	}
	return obj, nil
}

func flattenValue(rv reflect.Value) (any, error) {
	if !rv.IsValid() {
		return nil, nil
	}

	if rv.CanInterface() {
		switch leaf := rv.Interface().(type) {
		case *FileHandle:
			if leaf == nil {
				return nil, nil
			}
			return leaf, nil
		case FilePath:
			return leaf, nil
		case *Object:
			return leaf, nil
		case json.RawMessage, time.Time:
			return leaf, nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return flattenValue(rv.Elem())
	case reflect.Struct:
		return flattenStruct(rv)
	case reflect.Map:
		return flattenMap(rv)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface(), nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := flattenValue(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = item
		}
		return out, nil
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, fmt.Errorf("payload: cannot serialize value of kind %s", rv.Kind())
	default:
		return rv.Interface(), nil
	}
}

func flattenStruct(rv reflect.Value) (*Object, error) {
	obj := NewObject()
	var remain reflect.Value

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := parseTag(field)
		if !ok {
			continue
		}

		fv := rv.Field(i)
		if tag.remain {
			remain = fv
			continue
		}
		if omit(fv, tag) {
			continue
		}

		value, err := flattenValue(fv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag.name, err)
		}
		obj.Set(FieldName(tag.name), value)
	}

	if remain.IsValid() && remain.Kind() == reflect.Map && !remain.IsNil() {
		keys := sortedKeys(remain)
		for _, k := range keys {
			name := fmt.Sprint(k.Interface())
			if obj.Has(name) {
				continue
			}
			value, err := flattenValue(remain.MapIndex(k))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			obj.Set(name, value)
		}
	}

	return obj, nil
}

func omit(fv reflect.Value, tag fieldTag) bool {
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if fv.IsNil() {
			return true
		}
	case reflect.Map, reflect.Slice:
		if tag.omitNil && fv.IsNil() {
			return true
		}
	}
	return tag.omitZero && fv.IsZero()
}

func flattenMap(rv reflect.Value) (*Object, error) {
	obj := NewObject()
	if rv.IsNil() {
		return obj, nil
	}
	for _, k := range sortedKeys(rv) {
		name := fmt.Sprint(k.Interface())
		value, err := flattenValue(rv.MapIndex(k))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		obj.Set(name, value)
	}
	return obj, nil
}

func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	return keys
}
