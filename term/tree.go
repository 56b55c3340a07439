package term

import (
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/stx/syntax"
)

// Name returns the variant name of t, e.g. "BinaryExpression".
func Name(t Term) string {
	if t == nil {
		return ""
	}

	return reflect.TypeOf(t).Elem().Name()
}

// Tree converts it to nested maps and slices suitable for JSON or YAML
// encoding. Terms become maps with a "type" key naming the variant, and
// syntax objects become their source text.
func Tree(it Item) any {
	if it == nil {
		return nil
	}

	return treeValue(reflect.ValueOf(it))
}

func treeValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}

		return treeValue(v.Elem())

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}

		if v.Type() == syntaxType {
			return v.Interface().(*syntax.Syntax).String() //nolint:forcetypeassert
		}

		if v.Type().Elem().Kind() != reflect.Struct {
			return v.Interface()
		}

		typ := v.Type().Elem()
		node := map[string]any{"type": typ.Name()}

		for i := range typ.NumField() {
			if f := typ.Field(i); f.IsExported() {
				node[lowerFirst(f.Name)] = treeValue(v.Elem().Field(i))
			}
		}

		return node

	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = treeValue(v.Index(i))
		}

		return out

	default:
		return v.Interface()
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)

	return string(unicode.ToLower(r)) + s[n:]
}
