package ml

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedClassifier memoizes labels per row. The wrapped model must be
// immutable, otherwise cached labels go stale.
type CachedClassifier struct {
	inner Classifier
	cache *lru.Cache[Vector, string]
}

// NewCachedClassifier wraps inner with an LRU of the given size.
// A size of zero or less returns inner unchanged.
func NewCachedClassifier(inner Classifier, size int) (Classifier, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[Vector, string](size)
	if err != nil {
		return nil, fmt.Errorf("create prediction cache: %w", err)
	}
	return &CachedClassifier{inner: inner, cache: cache}, nil
}

func (c *CachedClassifier) Predict(rows [][]float64) ([]string, error) {
	labels := make([]string, len(rows))
	var missRows [][]float64
	var missIdx []int
	for i, row := range rows {
		key, ok := vectorKey(row)
		if ok {
			if label, hit := c.cache.Get(key); hit {
				labels[i] = label
				continue
			}
		}
		missRows = append(missRows, row)
		missIdx = append(missIdx, i)
	}
	if len(missRows) == 0 && len(rows) > 0 {
		return labels, nil
	}

	predicted, err := c.inner.Predict(missRows)
	if err != nil {
		return nil, err
	}
	if len(predicted) != len(missRows) {
		return nil, fmt.Errorf("classifier returned %d labels for %d rows", len(predicted), len(missRows))
	}
	for j, i := range missIdx {
		labels[i] = predicted[j]
		if key, ok := vectorKey(missRows[j]); ok {
			c.cache.Add(key, predicted[j])
		}
	}
	return labels, nil
}

// Len is the number of cached rows.
func (c *CachedClassifier) Len() int {
	return c.cache.Len()
}

// vectorKey only succeeds for rows of the trained width with no NaN, since a
// NaN key never matches itself. Other rows go to the inner classifier
// uncached so it can reject or label them.
func vectorKey(row []float64) (Vector, bool) {
	var v Vector
	if len(row) != NumFeatures {
		return v, false
	}
	for _, x := range row {
		if math.IsNaN(x) {
			return v, false
		}
	}
	copy(v[:], row)
	return v, true
}
