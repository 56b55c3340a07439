package term

import (
	"reflect"

	"github.com/ardnew/stx/syntax"
)

//nolint:gochecknoglobals
var syntaxType = reflect.TypeFor[*syntax.Syntax]()

// Map returns a deep copy of it with fn applied to every syntax object it
// contains, including raw tokens held in unexpanded fields. A nil item is
// returned unchanged.
func Map(it Item, fn func(*syntax.Syntax) *syntax.Syntax) Item {
	if it == nil {
		return nil
	}

	return mapValue(reflect.ValueOf(it), fn).Interface()
}

// MapTerm is [Map] for a value statically known to be a [Term].
func MapTerm(t Term, fn func(*syntax.Syntax) *syntax.Syntax) Term {
	if t == nil {
		return nil
	}

	return Map(t, fn).(Term) //nolint:forcetypeassert
}

// AddScope adds sc to every syntax object in it.
func AddScope(
	it Item,
	sc syntax.Scope,
	bt *syntax.BindingTable,
	phase syntax.Phase,
) Item {
	return Map(it, func(s *syntax.Syntax) *syntax.Syntax {
		return s.AddScope(sc, bt, phase)
	})
}

// FlipScope toggles sc on every syntax object in it.
func FlipScope(
	it Item,
	sc syntax.Scope,
	bt *syntax.BindingTable,
	phase syntax.Phase,
) Item {
	return Map(it, func(s *syntax.Syntax) *syntax.Syntax {
		return s.FlipScope(sc, bt, phase)
	})
}

func mapValue(
	v reflect.Value,
	fn func(*syntax.Syntax) *syntax.Syntax,
) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(mapValue(v.Elem(), fn))

		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		if v.Type() == syntaxType {
			//nolint:forcetypeassert
			return reflect.ValueOf(fn(v.Interface().(*syntax.Syntax)))
		}

		if v.Type().Elem().Kind() != reflect.Struct {
			return v
		}

		out := reflect.New(v.Type().Elem())
		out.Elem().Set(v.Elem())

		for i := range out.Elem().NumField() {
			if f := out.Elem().Field(i); f.CanSet() {
				f.Set(mapValue(f, fn))
			}
		}

		return out

	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(mapValue(v.Index(i), fn))
		}

		return out

	default:
		return v
	}
}
