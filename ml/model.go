package ml

import (
	"context"
	"errors"
	"fmt"
)

// Classifier maps a batch of rows to one label per row.
type Classifier interface {
	Predict(rows [][]float64) ([]string, error)
}

// Prediction is the outcome of one form submission.
type Prediction struct {
	Label    string   `json:"prediction"`
	Features Features `json:"features"`
	Vector   Vector   `json:"vector"`
}

// Predictor owns the loaded classifier for the lifetime of the process.
// It is never mutated after NewPredictor and is safe for concurrent use
// as long as the classifier is.
type Predictor struct {
	classifier Classifier
}

func NewPredictor(classifier Classifier) (*Predictor, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	return &Predictor{classifier: classifier}, nil
}

// Predict runs inference for a single row.
func (p *Predictor) Predict(ctx context.Context, features Features) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	vector := features.Vector()
	labels, err := p.classifier.Predict([][]float64{vector.Row()})
	if err != nil {
		return Prediction{}, err
	}
	if len(labels) != 1 {
		return Prediction{}, fmt.Errorf("classifier returned %d labels for 1 row", len(labels))
	}
	return Prediction{
		Label:    labels[0],
		Features: features,
		Vector:   vector,
	}, nil
}
