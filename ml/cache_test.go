package ml

import (
	"errors"
	"math"
	"testing"
)

func TestCachedClassifierMemoizes(t *testing.T) {
	stub := &stubClassifier{}
	c, err := NewCachedClassifier(stub, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := Features{TowerID: 5, Hour: 3}.Vector().Row()
	for i := 0; i < 3; i++ {
		labels, err := c.Predict([][]float64{row})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if labels[0] != "High Risk" {
			t.Fatalf("unexpected label %s", labels[0])
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", stub.calls)
	}
	if c.(*CachedClassifier).Len() != 1 {
		t.Fatalf("expected 1 cached row")
	}
}

func TestCachedClassifierMixedBatch(t *testing.T) {
	stub := &stubClassifier{}
	c, _ := NewCachedClassifier(stub, 8)

	cached := Features{TowerID: 1}.Vector().Row()
	fresh := Features{TowerID: 2}.Vector().Row()
	if _, err := c.Predict([][]float64{cached}); err != nil {
		t.Fatal(err)
	}
	labels, err := c.Predict([][]float64{cached, fresh})
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if len(stub.rows) != 1 || stub.rows[0][0] != 2 {
		t.Fatalf("expected only the fresh row to reach the model, got %v", stub.rows)
	}
}

func TestCachedClassifierPassesBadRowsThrough(t *testing.T) {
	c, _ := NewCachedClassifier(testTree(t), 8)
	if _, err := c.Predict([][]float64{{1, 2}}); !errors.Is(err, ErrFeatureCount) {
		t.Fatalf("expected ErrFeatureCount, got %v", err)
	}
	if _, err := c.Predict(nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestCachedClassifierDisabled(t *testing.T) {
	stub := &stubClassifier{}
	c, err := NewCachedClassifier(stub, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c != Classifier(stub) {
		t.Fatal("size 0 must return the inner classifier")
	}
}

func TestCachedClassifierSkipsNaNRows(t *testing.T) {
	stub := &stubClassifier{}
	c, _ := NewCachedClassifier(stub, 8)

	row := Features{TowerID: 9}.Vector().Row()
	row[FeatureLatitude] = math.NaN()
	for i := 0; i < 2; i++ {
		if _, err := c.Predict([][]float64{row}); err != nil {
			t.Fatal(err)
		}
	}
	if stub.calls != 2 {
		t.Fatalf("expected every NaN row to reach the model, got %d calls", stub.calls)
	}
	if n := c.(*CachedClassifier).Len(); n != 0 {
		t.Fatalf("expected NaN rows to stay out of the cache, got %d", n)
	}
}
