package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultModelPath is where the artifact is expected relative to the working directory.
const DefaultModelPath = "decision_tree_model.json"

const modelTypeDecisionTree = "decision_tree"

// LoadError reports an artifact that could not be turned into a classifier.
// The process cannot serve predictions without it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type artifact struct {
	ModelType    string     `json:"model_type"`
	FeatureNames []string   `json:"feature_names"`
	Classes      []string   `json:"classes"`
	Nodes        []TreeNode `json:"nodes"`
}

// LoadModel reads the artifact at path. Every failure is returned as *LoadError.
func LoadModel(path string) (*DecisionTree, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var a artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decode artifact: %w", err)}
	}
	if a.ModelType != modelTypeDecisionTree {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("unsupported model type %q", a.ModelType)}
	}
	if err := checkSchema(a.FeatureNames); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	dt, err := NewDecisionTree(a.FeatureNames, a.Classes, a.Nodes)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return dt, nil
}

// checkSchema compares the training-time columns against FeatureNames.
func checkSchema(names []string) error {
	if len(names) != NumFeatures {
		return fmt.Errorf("artifact has %d features, expected %d", len(names), NumFeatures)
	}
	for i, name := range names {
		if name != FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, FeatureNames[i])
		}
	}
	return nil
}

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
