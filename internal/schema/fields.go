package schema

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func oneOf[T ~string](values ...T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return "oneof=" + strings.Join(parts, " ")
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// fields reads typed values out of one decoded JSON object. JSON null is treated the same
// as an absent key.
type fields struct {
	shape Shape
	path  string
	obj   map[string]any
}

func object(shape Shape, path string, v any) (*fields, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid(shape, path, "must be an object")
	}
	return &fields{shape: shape, path: path, obj: obj}, nil
}

func (f *fields) name(key string) string {
	return join(f.path, key)
}

func (f *fields) lookup(key string) (any, bool) {
	v, ok := f.obj[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (f *fields) optionalString(key string) (*string, error) {
	v, ok := f.lookup(key)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalid(f.shape, f.name(key), "must be a string")
	}
	return &s, nil
}

func (f *fields) requiredString(key string) (string, error) {
	s, err := f.optionalString(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", invalid(f.shape, f.name(key), "is required")
	}
	if err := validate.Var(strings.TrimSpace(*s), "required"); err != nil {
		return "", invalid(f.shape, f.name(key), "must not be empty")
	}
	return *s, nil
}

// nonEmptyString is optional, but when present it must not be blank
func (f *fields) nonEmptyString(key string) (*string, error) {
	s, err := f.optionalString(key)
	if err != nil || s == nil {
		return nil, err
	}
	if err := validate.Var(strings.TrimSpace(*s), "required"); err != nil {
		return nil, invalid(f.shape, f.name(key), "must not be empty")
	}
	return s, nil
}

func (f *fields) enum(key, tag string, required bool) (*string, error) {
	s, err := f.optionalString(key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		if required {
			return nil, invalid(f.shape, f.name(key), "is required")
		}
		return nil, nil
	}
	if err := validate.Var(*s, tag); err != nil {
		allowed := strings.ReplaceAll(strings.TrimPrefix(tag, "oneof="), " ", ", ")
		return nil, invalid(f.shape, f.name(key), fmt.Sprintf("must be one of %s, got %q", allowed, *s))
	}
	return s, nil
}

func (f *fields) array(key string) ([]any, bool, error) {
	v, ok := f.lookup(key)
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, false, invalid(f.shape, f.name(key), "must be an array")
	}
	return arr, true, nil
}

func stringList(shape Shape, path string, arr []any) ([]string, error) {
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, invalid(shape, index(path, i), "must be a string")
		}
		out = append(out, s)
	}
	return out, nil
}
