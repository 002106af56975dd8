package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	truth := []string{"red", "red", "green", "green", "blue"}
	pred := []string{"red", "green", "green", "green", "red"}
	c, err := Classify(truth, pred)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, c.Accuracy, 1e-12)
	assert.Equal(t, 2, c.Support["red"])
	assert.Equal(t, 1, c.Confusion["red"]["green"])
	// red: p=1/2 r=1/2, green: p=2/3 r=1, blue: 0
	assert.InDelta(t, 0.5, c.PerClassF1["red"], 1e-12)
	assert.InDelta(t, 0.8, c.PerClassF1["green"], 1e-12)
	assert.Equal(t, 0.0, c.PerClassF1["blue"])
	assert.InDelta(t, (0.5*2+0.8*2)/5, c.WeightedF1, 1e-12)
}

func TestClassifyPerfect(t *testing.T) {
	c, err := Classify([]string{"a", "b"}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.Accuracy)
	assert.Equal(t, 1.0, c.WeightedF1)
}

func TestClassifyErrors(t *testing.T) {
	_, err := Classify([]string{"a"}, nil)
	assert.Error(t, err)
	_, err = Classify(nil, nil)
	assert.Error(t, err)
}

func TestRegress(t *testing.T) {
	r, err := Regress([]float64{1, 2, 3}, []float64{2, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3, r.MSE, 1e-12)
	assert.InDelta(t, 1.0, r.MAE, 1e-12)
	_, err = Regress([]float64{1}, []float64{})
	assert.Error(t, err)
}
