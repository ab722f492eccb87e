// Package query turns typed request structs into the flat parameter set sent
// on the request line.
//
// Fields are selected with a `query:"name"` tag and may declare a default with
// `default:"literal"`. A field is omitted when it holds no value (nil pointer,
// empty string or list, zero scalar) or when it equals its declared default.
// Booleans are always written as the integers 1 and 0.
package query

import (
	"net/url"
	"reflect"
	"strconv"

	"github.com/spf13/cast"
)

const (
	nameTag    = "query"
	defaultTag = "default"
)

// Params maps wire parameter names to string, int or []string values.
type Params map[string]any

// Values renders the parameters for an HTTP request. List values become
// repeated keys.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for name, val := range p {
		switch t := val.(type) {
		case string:
			v.Set(name, t)
		case int:
			v.Set(name, strconv.Itoa(t))
		case []string:
			for _, s := range t {
				v.Add(name, s)
			}
		default:
			v.Set(name, cast.ToString(t))
		}
	}
	return v
}

// Encode builds Params from a struct or a pointer to a struct. Any other value
// yields an empty set.
func Encode(req any) Params {
	params := make(Params)

	rv := reflect.ValueOf(req)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return params
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return params
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		name, ok := field.Tag.Lookup(nameTag)
		if !ok || name == "" || name == "-" || !field.IsExported() {
			continue
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		} else if fv.IsZero() {
			continue
		}

		def, hasDefault := field.Tag.Lookup(defaultTag)
		if hasDefault && equalsDefault(fv, def) {
			continue
		}

		if val, ok := wireValue(fv); ok {
			params[name] = val
		}
	}

	return params
}

func wireValue(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), true
	case reflect.String:
		return v.String(), true
	case reflect.Slice:
		if v.Len() == 0 {
			return nil, false
		}
		out := make([]string, 0, v.Len())
		for i := range v.Len() {
			elem := v.Index(i)
			if elem.Kind() == reflect.String {
				out = append(out, elem.String())
				continue
			}
			out = append(out, cast.ToString(elem.Interface()))
		}
		return out, true
	}
	return nil, false
}

func equalsDefault(v reflect.Value, def string) bool {
	switch v.Kind() {
	case reflect.Bool:
		b, err := cast.ToBoolE(def)
		return err == nil && b == v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(def)
		return err == nil && n == v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(def)
		return err == nil && n == v.Uint()
	case reflect.String:
		return v.String() == def
	}
	return false
}
