package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"safetyrisk/ml"
)

// FieldError is a value rejected by its control.
type FieldError struct {
	Name   string `json:"field"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q %s", e.Label, e.Value, e.Reason)
}

// ValidationError collects every rejected field of one submission.
type ValidationError struct {
	Fields []*FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Field returns the rejection for name, or nil.
func (e *ValidationError) Field(name string) *FieldError {
	if e == nil {
		return nil
	}
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Parse runs every control over values and assembles the features.
// On failure the error is a *ValidationError.
func Parse(values url.Values) (ml.Features, error) {
	var vector ml.Vector
	var verr ValidationError
	for i, c := range Controls {
		v, err := c.Accept(values.Get(c.Name()))
		if err != nil {
			verr.Fields = append(verr.Fields, err.(*FieldError))
			continue
		}
		vector[i] = v
	}
	if len(verr.Fields) > 0 {
		return ml.Features{}, &verr
	}
	return ml.FeaturesFromVector(vector), nil
}

// Field is a control together with the value it currently shows.
type Field struct {
	Control
	Value string
	Error string
}

// Fields prepares the controls for rendering. Submitted values are kept so the
// user can correct them; absent ones fall back to the control default.
func Fields(values url.Values, verr *ValidationError) []Field {
	fields := make([]Field, len(Controls))
	for i, c := range Controls {
		value := c.Default
		if values != nil {
			if _, ok := values[c.Name()]; ok {
				value = values.Get(c.Name())
			}
		}
		f := Field{Control: c, Value: value}
		if fe := verr.Field(c.Name()); fe != nil {
			f.Error = fe.Reason
		}
		fields[i] = f
	}
	return fields
}

// Values renders features back into form values.
func Values(features ml.Features) url.Values {
	vector := features.Vector()
	values := make(url.Values, len(Controls))
	for i, c := range Controls {
		values.Set(c.Name(), c.Raw(vector[i]))
	}
	return values
}

// ValuesFromJSON converts a decoded JSON object into form values. Numbers must
// have been decoded with json.Decoder.UseNumber. Booleans are accepted for the
// weekend answer.
func ValuesFromJSON(body map[string]interface{}) (url.Values, error) {
	values := make(url.Values, len(body))
	for key, raw := range body {
		switch v := raw.(type) {
		case json.Number:
			values.Set(key, v.String())
		case string:
			values.Set(key, v)
		case bool:
			if v {
				values.Set(key, "Yes")
			} else {
				values.Set(key, "No")
			}
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case nil:
		default:
			return nil, fmt.Errorf("field %s: unsupported value %v", key, raw)
		}
	}
	return values, nil
}
