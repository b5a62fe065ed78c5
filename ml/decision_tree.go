package ml

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch   = errors.New("empty batch")
	ErrFeatureCount = errors.New("feature count mismatch")
)

// DecisionTree is a trained tree in flattened form. Root is nodes[0].
type DecisionTree struct {
	featureNames []string
	classes      []string
	nodes        []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree builds a tree from already decoded parts and checks that
// every index inside it is resolvable.
func NewDecisionTree(featureNames, classes []string, nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{
		featureNames: append([]string(nil), featureNames...),
		classes:      append([]string(nil), classes...),
		nodes:        append([]TreeNode(nil), nodes...),
	}
	if err := dt.validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

// NumFeatures is the row width the tree was trained on.
func (dt *DecisionTree) NumFeatures() int {
	return len(dt.featureNames)
}

// Classes returns a copy of the label set.
func (dt *DecisionTree) Classes() []string {
	return append([]string(nil), dt.classes...)
}

// Predict returns one label per row.
func (dt *DecisionTree) Predict(rows [][]float64) ([]string, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}
	labels := make([]string, len(rows))
	for i, row := range rows {
		label, err := dt.predictRow(row)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}

func (dt *DecisionTree) predictRow(features []float64) (string, error) {
	if len(features) != dt.NumFeatures() {
		return "", fmt.Errorf("%w: X has %d features, but DecisionTree is expecting %d features as input",
			ErrFeatureCount, len(features), dt.NumFeatures())
	}
	idx := 0
	// children always point forward, so a walk visits at most len(nodes) nodes.
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return dt.classes[node.ClassLabel], nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return "", errors.New("invalid tree state")
}

func (dt *DecisionTree) validate() error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if len(dt.classes) == 0 {
		return errors.New("tree has no classes")
	}
	if len(dt.featureNames) == 0 {
		return errors.New("tree has no feature names")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if node.ClassLabel < 0 || node.ClassLabel >= len(dt.classes) {
				return fmt.Errorf("node %d: class label %d out of range", i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(dt.featureNames) {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.nodes) {
			return fmt.Errorf("node %d: left child %d out of range", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(dt.nodes) {
			return fmt.Errorf("node %d: right child %d out of range", i, node.RightChild)
		}
	}
	return nil
}
