// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

// Package params binds loosely typed handler parameters (from flags or a
// batch file) to the typed parameter struct each handler declares.
//
// A parameter struct describes itself through field tags:
//
//	Points float64 `mapstructure:"points" validate:"required,gt=0" help:"points per day attended"`
//	Label  string  `mapstructure:"assignment" default:"attendance" help:"assignment id"`
package params

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// ErrInvalid is returned for parameters that do not decode or validate.
var ErrInvalid = errors.New("invalid parameters")

// Field describes one declared parameter.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Rules    string `json:"rules,omitempty" yaml:"rules,omitempty"`
	Help     string `json:"help,omitempty" yaml:"help,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fieldName(fld)
	})
	return v
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml"} {
		if name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]; name != "" {
			return name
		}
	}
	return strings.ToLower(fld.Name)
}

// Describe lists the parameters declared by the struct v (or pointer to one)
// in field order.
func Describe(v any) []Field {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var out []Field
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() || fieldName(fld) == "-" {
			continue
		}
		rules := fld.Tag.Get("validate")
		out = append(out, Field{
			Name:     fieldName(fld),
			Type:     typeName(fld.Type),
			Required: hasRule(rules, "required"),
			Default:  fld.Tag.Get("default"),
			Rules:    rules,
			Help:     fld.Tag.Get("help"),
		})
	}
	return out
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "list of " + typeName(t.Elem())
	default:
		return t.Kind().String()
	}
}

func hasRule(rules, name string) bool {
	for _, r := range strings.Split(rules, ",") {
		if strings.SplitN(r, "=", 2)[0] == name {
			return true
		}
	}
	return false
}

// Defaults returns the default tag values of the struct out as a raw map.
func Defaults(out any) map[string]any {
	m := map[string]any{}
	for _, f := range Describe(out) {
		if f.Default != "" {
			m[f.Name] = f.Default
		}
	}
	return m
}

// Decode fills out (a pointer to a parameter struct) from raw. Keys missing
// from raw take their default tag value. String values are converted to the
// field type, so "2" decodes into a float and "a,b" into a string list.
// Unknown keys and failed validation rules are errors wrapping ErrInvalid.
func Decode(raw map[string]any, out any) error {
	merged := Defaults(out)
	for k, v := range raw {
		merged[strings.ToLower(strings.TrimSpace(k))] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(merged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return Validate(out)
}

// Validate checks the validate tags of the struct v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = formatFieldError(fe)
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "required_without":
		return fmt.Sprintf("%s is required without %s", field, param)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "hostname":
		return fmt.Sprintf("%s must be a host name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ParseAssignments turns "key=value" strings, as given on the command line,
// into a raw parameter map. A bare key is read as "true".
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("%w: malformed parameter %q (want key=value)", ErrInvalid, p)
		}
		if !ok {
			v = "true"
		}
		out[k] = v
	}
	return out, nil
}
