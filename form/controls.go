// Package form describes the bounded input controls of the prediction form
// and turns submitted values into ml.Features.
package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"safetyrisk/ml"
)

type Kind int

const (
	KindNumber Kind = iota
	KindSlider
	KindRadio
)

// maxExactInt is the largest integer a float64 holds without loss.
const maxExactInt = 1 << 53

// Control is one input widget. Bounds are inclusive and are enforced by
// Accept, the same way the browser enforces the rendered min/max attributes.
type Control struct {
	Feature  ml.FeatureIndex
	Label    string
	Kind     Kind
	Min      float64
	Max      float64
	HasMax   bool
	Step     float64
	Decimals int
	Default  string
	Options  []string
	Help     string
}

// Controls is indexed by ml.FeatureIndex, so it lists the widgets in vector order.
var Controls = [ml.NumFeatures]Control{
	ml.FeatureTowerID: {
		Label: "Tower ID", Kind: KindNumber,
		Min: 1, Step: 1, Default: "1",
	},
	ml.FeatureLatitude: {
		Label: "Latitude", Kind: KindNumber,
		Min: -90, Max: 90, HasMax: true, Step: 0.0001, Decimals: 4, Default: "-90.0000",
	},
	ml.FeatureLongitude: {
		Label: "Longitude", Kind: KindNumber,
		Min: -180, Max: 180, HasMax: true, Step: 0.0001, Decimals: 4, Default: "-180.0000",
	},
	ml.FeatureSignalStrength: {
		Label: "Signal Strength (dBm)", Kind: KindNumber,
		Min: -120, Max: 0, HasMax: true, Step: 1, Default: "-120",
	},
	ml.FeatureMaleCount: {
		Label: "Male Count", Kind: KindNumber,
		Min: 0, Step: 1, Default: "0",
	},
	ml.FeatureFemaleCount: {
		Label: "Female Count", Kind: KindNumber,
		Min: 0, Step: 1, Default: "0",
	},
	ml.FeatureCrowdDensity: {
		Label: "Crowd Density (people/m²)", Kind: KindNumber,
		Min: 0, Step: 1, Default: "0",
	},
	ml.FeatureHour: {
		Label: "Hour", Kind: KindSlider,
		Min: 0, Max: 23, HasMax: true, Step: 1, Default: "0",
	},
	ml.FeatureDayOfWeek: {
		Label: "Day of Week", Kind: KindSlider,
		Min: 0, Max: 6, HasMax: true, Step: 1, Default: "0", Help: "0=Sunday, 6=Saturday",
	},
	ml.FeatureMonth: {
		Label: "Month", Kind: KindSlider,
		Min: 1, Max: 12, HasMax: true, Step: 1, Default: "1",
	},
	ml.FeatureIsWeekend: {
		Label: "Is Weekend?", Kind: KindRadio,
		Min: 0, Max: 1, HasMax: true, Step: 1, Default: "Yes", Options: []string{"Yes", "No"},
	},
}

func init() {
	for i := range Controls {
		Controls[i].Feature = ml.FeatureIndex(i)
	}
}

// Name is the form field name, the training-time column name.
func (c Control) Name() string {
	return c.Feature.String()
}

func (c Control) Integer() bool {
	return c.Decimals == 0
}

// Accept parses raw and applies the control's constraints.
func (c Control) Accept(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, c.reject(raw, "value is required")
	}
	if c.Kind == KindRadio {
		weekend, err := ml.ParseWeekend(raw)
		if err != nil {
			return 0, c.reject(raw, "choose one of "+strings.Join(c.Options, ", "))
		}
		return float64(ml.WeekendFlag(weekend)), nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, c.reject(raw, "not a number")
	}
	if c.Integer() {
		if v != math.Trunc(v) {
			return 0, c.reject(raw, "must be a whole number")
		}
		if math.Abs(v) > maxExactInt {
			return 0, c.reject(raw, "too large")
		}
	} else if !c.onStep(v) {
		return 0, c.reject(raw, fmt.Sprintf("must be a multiple of %s", c.StepAttr()))
	}
	if v < c.Min {
		return 0, c.reject(raw, fmt.Sprintf("must be at least %s", c.Raw(c.Min)))
	}
	if c.HasMax && v > c.Max {
		return 0, c.reject(raw, fmt.Sprintf("must be at most %s", c.Raw(c.Max)))
	}
	return v, nil
}

// onStep reports whether v survives formatting with the control's decimals,
// so the echoed value is exactly the one the model receives.
func (c Control) onStep(v float64) bool {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', c.Decimals, 64), 64)
	return err == nil && rounded == v
}

// Raw formats v as an input value attribute.
func (c Control) Raw(v float64) string {
	if c.Kind == KindRadio {
		if v != 0 {
			return c.Options[0]
		}
		return c.Options[1]
	}
	return strconv.FormatFloat(v, 'f', c.Decimals, 64)
}

// Display formats v for the echoed input table, ungrouped so it reads the
// same as what was typed.
func (c Control) Display(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.Scale(c.Decimals), number.NoSeparator()))
}

// InputType is the HTML input type of the control.
func (c Control) InputType() string {
	switch c.Kind {
	case KindSlider:
		return "range"
	case KindRadio:
		return "radio"
	default:
		return "number"
	}
}

// StepAttr is the step attribute of the rendered input.
func (c Control) StepAttr() string {
	return strconv.FormatFloat(c.Step, 'f', -1, 64)
}

func (c Control) reject(raw, reason string) *FieldError {
	return &FieldError{Name: c.Name(), Label: c.Label, Value: raw, Reason: reason}
}
