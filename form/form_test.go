package form

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetyrisk/ml"
)

func validValues() url.Values {
	return url.Values{
		"tower_id":        {"101"},
		"latitude":        {"28.6139"},
		"longitude":       {"77.2090"},
		"signal_strength": {"-70"},
		"male_count":      {"25"},
		"female_count":    {"10"},
		"crowd_density":   {"4"},
		"hour":            {"21"},
		"day_of_week":     {"5"},
		"month":           {"3"},
		"is_weekend":      {"No"},
	}
}

func TestParseBuildsFeatures(t *testing.T) {
	f, err := Parse(validValues())
	require.NoError(t, err)
	assert.Equal(t, ml.Features{
		TowerID: 101, Latitude: 28.6139, Longitude: 77.2090, SignalStrength: -70,
		MaleCount: 25, FemaleCount: 10, CrowdDensity: 4,
		Hour: 21, DayOfWeek: 5, Month: 3, IsWeekend: false,
	}, f)
}

func TestParseBoundaryScenario(t *testing.T) {
	values := validValues()
	values.Set("latitude", "-90.0")
	values.Set("longitude", "180.0")
	values.Set("hour", "0")
	values.Set("day_of_week", "6")
	values.Set("month", "12")
	values.Set("is_weekend", "Yes")

	f, err := Parse(values)
	require.NoError(t, err)
	v := f.Vector()
	assert.Equal(t, 1.0, v[ml.NumFeatures-1])
	assert.Equal(t, -90.0, v[ml.FeatureLatitude])
	assert.Equal(t, 180.0, v[ml.FeatureLongitude])
}

func TestSignalStrengthBounds(t *testing.T) {
	c := Controls[ml.FeatureSignalStrength]
	for _, ok := range []string{"-120", "0", "-60"} {
		_, err := c.Accept(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"-121", "1", "-50.5", "abc", ""} {
		_, err := c.Accept(bad)
		assert.Error(t, err, bad)
	}
}

func TestControlBounds(t *testing.T) {
	cases := []struct {
		feature ml.FeatureIndex
		accept  []string
		reject  []string
	}{
		{ml.FeatureTowerID, []string{"1", "999999"}, []string{"0", "-3", "1.5"}},
		{ml.FeatureLatitude, []string{"-90", "90", "12.3456", "0.0001"}, []string{"-90.0001", "90.5", "12.34567", "0.00005"}},
		{ml.FeatureLongitude, []string{"-180", "180", "77.59"}, []string{"180.0001", "-181", "77.123456"}},
		{ml.FeatureMaleCount, []string{"0", "5000"}, []string{"-1"}},
		{ml.FeatureFemaleCount, []string{"0"}, []string{"-1", "2.2"}},
		{ml.FeatureCrowdDensity, []string{"0", "12"}, []string{"-1"}},
		{ml.FeatureHour, []string{"0", "23"}, []string{"24", "-1"}},
		{ml.FeatureDayOfWeek, []string{"0", "6"}, []string{"7"}},
		{ml.FeatureMonth, []string{"1", "12"}, []string{"0", "13"}},
		{ml.FeatureIsWeekend, []string{"Yes", "No"}, []string{"yes", "1", "Maybe"}},
		{ml.FeatureTowerID, nil, []string{"NaN", "Inf", "1e300"}},
	}
	for _, tc := range cases {
		c := Controls[tc.feature]
		for _, raw := range tc.accept {
			_, err := c.Accept(raw)
			assert.NoError(t, err, "%s=%s", c.Name(), raw)
		}
		for _, raw := range tc.reject {
			_, err := c.Accept(raw)
			assert.Error(t, err, "%s=%s", c.Name(), raw)
		}
	}
}

func TestWeekendControlMapping(t *testing.T) {
	c := Controls[ml.FeatureIsWeekend]
	yes, err := c.Accept("Yes")
	require.NoError(t, err)
	no, err := c.Accept("No")
	require.NoError(t, err)
	assert.Equal(t, 1.0, yes)
	assert.Equal(t, 0.0, no)
}

func TestParseCollectsAllErrors(t *testing.T) {
	values := validValues()
	values.Set("signal_strength", "1")
	values.Set("month", "13")
	values.Del("hour")

	_, err := Parse(values)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "signal_strength", verr.Fields[0].Name)
	assert.Equal(t, "hour", verr.Fields[1].Name)
	assert.Equal(t, "month", verr.Fields[2].Name)
	assert.NotNil(t, verr.Field("month"))
	assert.Nil(t, verr.Field("latitude"))
	assert.Contains(t, err.Error(), "Signal Strength (dBm)")
}

func TestControlsOrderAndDefaults(t *testing.T) {
	require.Len(t, Controls, ml.NumFeatures)
	for i, c := range Controls {
		assert.Equal(t, ml.FeatureIndex(i), c.Feature)
		assert.Equal(t, ml.FeatureNames[i], c.Name())
		_, err := c.Accept(c.Default)
		assert.NoError(t, err, "default of %s must be accepted", c.Name())
	}
	assert.Equal(t, "0=Sunday, 6=Saturday", Controls[ml.FeatureDayOfWeek].Help)
}

func TestFieldsKeepSubmittedValues(t *testing.T) {
	values := url.Values{"hour": {"30"}}
	_, err := Parse(values)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := Fields(values, verr)
	require.Len(t, fields, ml.NumFeatures)
	assert.Equal(t, "30", fields[ml.FeatureHour].Value)
	assert.NotEmpty(t, fields[ml.FeatureHour].Error)
	assert.Equal(t, "1", fields[ml.FeatureTowerID].Value)

	defaults := Fields(nil, nil)
	assert.Equal(t, "Yes", defaults[ml.FeatureIsWeekend].Value)
	assert.Empty(t, defaults[ml.FeatureIsWeekend].Error)
}

func TestDecimalControlStep(t *testing.T) {
	c := Controls[ml.FeatureLatitude]
	_, err := c.Accept("12.34567")
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "must be a multiple of 0.0001", fe.Reason)

	v, err := c.Accept("12.3457")
	require.NoError(t, err)
	assert.Equal(t, "12.3457", c.Display(v))
	assert.Equal(t, "12.3457", c.Raw(v))
}

func TestValuesRoundTrip(t *testing.T) {
	f, err := Parse(validValues())
	require.NoError(t, err)
	again, err := Parse(Values(f))
	require.NoError(t, err)
	assert.Equal(t, f, again)
	assert.Equal(t, "No", Values(f).Get("is_weekend"))
	assert.Equal(t, "28.6139", Values(f).Get("latitude"))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "12.9716", Controls[ml.FeatureLatitude].Display(12.9716))
	assert.Equal(t, "12345", Controls[ml.FeatureTowerID].Display(12345))
	assert.Equal(t, "1200", Controls[ml.FeatureMaleCount].Display(1200))
	assert.Equal(t, "-85", Controls[ml.FeatureSignalStrength].Display(-85))
	assert.Equal(t, "1", Controls[ml.FeatureIsWeekend].Display(1))
}

func TestValuesFromJSON(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{
		"tower_id": 7, "latitude": -90, "longitude": 180, "signal_strength": -120,
		"male_count": 0, "female_count": 0, "crowd_density": 0,
		"hour": 0, "day_of_week": 6, "month": 12, "is_weekend": true
	}`))
	dec.UseNumber()
	var body map[string]interface{}
	require.NoError(t, dec.Decode(&body))

	values, err := ValuesFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, "Yes", values.Get("is_weekend"))

	f, err := Parse(values)
	require.NoError(t, err)
	assert.True(t, f.IsWeekend)
	assert.Equal(t, 7, f.TowerID)

	_, err = ValuesFromJSON(map[string]interface{}{"hour": []interface{}{1}})
	assert.Error(t, err)
}
