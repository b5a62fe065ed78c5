package ml

import (
	"fmt"
)

// FeatureIndex is the position of a feature inside a Vector.
// The order is the one the decision tree was trained with and must not change
// without retraining the artifact.
type FeatureIndex int

const (
	FeatureTowerID FeatureIndex = iota
	FeatureLatitude
	FeatureLongitude
	FeatureSignalStrength
	FeatureMaleCount
	FeatureFemaleCount
	FeatureCrowdDensity
	FeatureHour
	FeatureDayOfWeek
	FeatureMonth
	FeatureIsWeekend

	NumFeatures = int(iota)
)

// FeatureNames are the training-time column names, keyed by FeatureIndex.
var FeatureNames = [NumFeatures]string{
	FeatureTowerID:        "tower_id",
	FeatureLatitude:       "latitude",
	FeatureLongitude:      "longitude",
	FeatureSignalStrength: "signal_strength",
	FeatureMaleCount:      "male_count",
	FeatureFemaleCount:    "female_count",
	FeatureCrowdDensity:   "crowd_density",
	FeatureHour:           "hour",
	FeatureDayOfWeek:      "day_of_week",
	FeatureMonth:          "month",
	FeatureIsWeekend:      "is_weekend",
}

func (i FeatureIndex) String() string {
	if i < 0 || int(i) >= NumFeatures {
		return fmt.Sprintf("feature(%d)", int(i))
	}
	return FeatureNames[i]
}

// Vector is one row as the classifier sees it.
type Vector [NumFeatures]float64

// Row returns the vector as a slice for batch inference.
func (v Vector) Row() []float64 {
	row := make([]float64, NumFeatures)
	copy(row, v[:])
	return row
}

// Features is the typed form of a single prediction request.
type Features struct {
	TowerID        int     `json:"tower_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	SignalStrength int     `json:"signal_strength"`
	MaleCount      int     `json:"male_count"`
	FemaleCount    int     `json:"female_count"`
	CrowdDensity   int     `json:"crowd_density"`
	Hour           int     `json:"hour"`
	DayOfWeek      int     `json:"day_of_week"`
	Month          int     `json:"month"`
	IsWeekend      bool    `json:"is_weekend"`
}

// Vector assembles the features in training order.
func (f Features) Vector() Vector {
	var v Vector
	v[FeatureTowerID] = float64(f.TowerID)
	v[FeatureLatitude] = f.Latitude
	v[FeatureLongitude] = f.Longitude
	v[FeatureSignalStrength] = float64(f.SignalStrength)
	v[FeatureMaleCount] = float64(f.MaleCount)
	v[FeatureFemaleCount] = float64(f.FemaleCount)
	v[FeatureCrowdDensity] = float64(f.CrowdDensity)
	v[FeatureHour] = float64(f.Hour)
	v[FeatureDayOfWeek] = float64(f.DayOfWeek)
	v[FeatureMonth] = float64(f.Month)
	v[FeatureIsWeekend] = float64(WeekendFlag(f.IsWeekend))
	return v
}

// FeaturesFromVector is the inverse of Features.Vector. Integer columns are
// truncated and any non-zero weekend value counts as a weekend.
func FeaturesFromVector(v Vector) Features {
	return Features{
		TowerID:        int(v[FeatureTowerID]),
		Latitude:       v[FeatureLatitude],
		Longitude:      v[FeatureLongitude],
		SignalStrength: int(v[FeatureSignalStrength]),
		MaleCount:      int(v[FeatureMaleCount]),
		FemaleCount:    int(v[FeatureFemaleCount]),
		CrowdDensity:   int(v[FeatureCrowdDensity]),
		Hour:           int(v[FeatureHour]),
		DayOfWeek:      int(v[FeatureDayOfWeek]),
		Month:          int(v[FeatureMonth]),
		IsWeekend:      v[FeatureIsWeekend] != 0,
	}
}

// WeekendFlag encodes the weekend answer the way the model was trained: 1 or 0.
func WeekendFlag(weekend bool) int {
	if weekend {
		return 1
	}
	return 0
}

// ParseWeekend maps the radio answer to a bool. Only "Yes" and "No" are valid.
func ParseWeekend(answer string) (bool, error) {
	switch answer {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	default:
		return false, fmt.Errorf("weekend answer must be Yes or No, got %q", answer)
	}
}
