// Package propertyaccess reads and writes entity properties by name. Forms use
// it to map field values onto application data (SetData/GetData).
//
// Entities are either map[string]any, addressed by key, or pointers to
// structs, addressed by field. Paths may be dotted ("address.city") to reach
// nested maps and structs. Struct fields are matched, in order, by a `form`
// tag, a `json` tag, the exact Go name, then the name compared
// case-insensitively.
package propertyaccess

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	// ErrNotFound is returned when the path does not name a property.
	ErrNotFound = errors.New("propertyaccess: property not found")
	// ErrUnsupported is returned for entities that are neither maps nor
	// struct pointers.
	ErrUnsupported = errors.New("propertyaccess: unsupported entity")
	// ErrNotSettable is returned when the property exists but cannot be
	// written (unexported field, struct passed by value).
	ErrNotSettable = errors.New("propertyaccess: property is not settable")
)

// Accessor is the entity mapping contract consumed by forms.
type Accessor interface {
	GetValue(entity any, path string) (any, error)
	SetValue(entity any, path string, value any) error
}

// Reflective is the default Accessor.
type Reflective struct {
	// Tag is the struct tag consulted first; defaults to "form".
	Tag string
}

var _ Accessor = (*Reflective)(nil)

// New returns the default accessor.
func New() *Reflective {
	return &Reflective{Tag: "form"}
}

// GetValue returns the property at path.
func (a *Reflective) GetValue(entity any, path string) (any, error) {
	if entity == nil {
		return nil, ErrUnsupported
	}
	current := reflect.ValueOf(entity)
	for _, segment := range split(path) {
		next, err := a.child(current, segment)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, path)
		}
		current = next
	}
	if !current.IsValid() {
		return nil, nil
	}
	if current.Kind() == reflect.Pointer && current.IsNil() {
		return nil, nil
	}
	return current.Interface(), nil
}

// SetValue writes value at path, converting it to the property type when
// the types differ. Intermediate nil maps and struct pointers are allocated.
func (a *Reflective) SetValue(entity any, path string, value any) error {
	if entity == nil {
		return ErrUnsupported
	}
	segments := split(path)
	if len(segments) == 0 {
		return fmt.Errorf("%w: empty path", ErrNotFound)
	}
	root := reflect.ValueOf(entity)
	if root.Kind() != reflect.Map && root.Kind() != reflect.Pointer {
		return fmt.Errorf("%w: %T", ErrUnsupported, entity)
	}
	if err := a.set(root, segments, value); err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}
	return nil
}

func (a *Reflective) set(target reflect.Value, segments []string, value any) error {
	target = deref(target, true)
	segment := segments[0]
	last := len(segments) == 1

	switch target.Kind() {
	case reflect.Map:
		if target.Type().Key().Kind() != reflect.String {
			return ErrUnsupported
		}
		key := reflect.ValueOf(segment).Convert(target.Type().Key())
		elemType := target.Type().Elem()
		if last {
			converted, err := convert(value, elemType)
			if err != nil {
				return err
			}
			if target.IsNil() {
				return ErrNotSettable
			}
			target.SetMapIndex(key, converted)
			return nil
		}
		child := target.MapIndex(key)
		if child.IsValid() && child.Kind() == reflect.Interface {
			child = child.Elem()
		}
		if !child.IsValid() || (child.Kind() == reflect.Map && child.IsNil()) {
			if elemType.Kind() != reflect.Interface && elemType.Kind() != reflect.Map {
				return ErrNotFound
			}
			fresh := reflect.ValueOf(map[string]any{})
			if elemType.Kind() == reflect.Map {
				fresh = reflect.MakeMap(elemType)
			}
			target.SetMapIndex(key, fresh)
			child = fresh
		}
		if child.Kind() == reflect.Struct {
			// Struct values stored in maps are not addressable; copy, write, store back.
			clone := reflect.New(child.Type())
			clone.Elem().Set(child)
			if err := a.set(clone, segments[1:], value); err != nil {
				return err
			}
			target.SetMapIndex(key, clone.Elem())
			return nil
		}
		return a.set(child, segments[1:], value)

	case reflect.Struct:
		field, ok := a.field(target, segment)
		if !ok {
			return ErrNotFound
		}
		if !field.CanSet() {
			return ErrNotSettable
		}
		if last {
			converted, err := convert(value, field.Type())
			if err != nil {
				return err
			}
			field.Set(converted)
			return nil
		}
		if field.Kind() == reflect.Pointer && field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		if field.Kind() == reflect.Map && field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
		if field.Kind() == reflect.Struct {
			return a.set(field.Addr(), segments[1:], value)
		}
		return a.set(field, segments[1:], value)
	}
	return ErrUnsupported
}

func (a *Reflective) child(current reflect.Value, segment string) (reflect.Value, error) {
	current = deref(current, false)
	if !current.IsValid() {
		return reflect.Value{}, nil
	}
	switch current.Kind() {
	case reflect.Map:
		if current.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, ErrUnsupported
		}
		v := current.MapIndex(reflect.ValueOf(segment).Convert(current.Type().Key()))
		if !v.IsValid() {
			return reflect.Value{}, ErrNotFound
		}
		return v, nil
	case reflect.Struct:
		field, ok := a.field(current, segment)
		if !ok {
			return reflect.Value{}, ErrNotFound
		}
		return field, nil
	}
	return reflect.Value{}, ErrUnsupported
}

func (a *Reflective) field(target reflect.Value, name string) (reflect.Value, bool) {
	typ := target.Type()
	tag := a.Tag
	if tag == "" {
		tag = "form"
	}
	matchers := []func(reflect.StructField) bool{
		func(f reflect.StructField) bool { return tagName(f, tag) == name },
		func(f reflect.StructField) bool { return tagName(f, "json") == name },
		func(f reflect.StructField) bool { return f.Name == name },
		func(f reflect.StructField) bool { return strings.EqualFold(f.Name, name) },
	}
	for _, match := range matchers {
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			if !f.IsExported() {
				continue
			}
			if match(f) {
				return target.Field(i), true
			}
		}
	}
	return reflect.Value{}, false
}

func tagName(f reflect.StructField, key string) string {
	tag := f.Tag.Get(key)
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func deref(v reflect.Value, allocate bool) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			if !allocate || v.Kind() != reflect.Pointer || !v.CanSet() {
				return reflect.Value{}
			}
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func split(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

var timeType = reflect.TypeOf(time.Time{})

// convert coerces value into typ. nil becomes the zero value.
func convert(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(typ), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(typ) {
		return v, nil
	}
	if typ.Kind() == reflect.Pointer {
		inner, err := convert(value, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(typ), nil
		}
		return convert(v.Elem().Interface(), typ)
	}

	var (
		out any
		err error
	)
	switch {
	case typ == timeType:
		out, err = cast.ToTimeE(value)
	case typ.Kind() == reflect.String:
		out, err = cast.ToStringE(value)
	case typ.Kind() == reflect.Bool:
		out, err = cast.ToBoolE(value)
	case typ.Kind() >= reflect.Int && typ.Kind() <= reflect.Int64:
		out, err = cast.ToInt64E(value)
	case typ.Kind() >= reflect.Uint && typ.Kind() <= reflect.Uint64:
		out, err = cast.ToUint64E(value)
	case typ.Kind() == reflect.Float32 || typ.Kind() == reflect.Float64:
		out, err = cast.ToFloat64E(value)
	case typ.Kind() == reflect.Slice && typ.Elem().Kind() == reflect.String:
		out, err = cast.ToStringSliceE(value)
	case typ.Kind() == reflect.Interface && v.Type().Implements(typ):
		return v, nil
	default:
		if v.Type().ConvertibleTo(typ) {
			return v.Convert(typ), nil
		}
		return reflect.Value{}, fmt.Errorf("propertyaccess: cannot assign %T to %s", value, typ)
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("propertyaccess: cannot assign %T to %s: %w", value, typ, err)
	}
	return reflect.ValueOf(out).Convert(typ), nil
}
