package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestUniformSampleBounds(t *testing.T) {
	e := Estimate{Type: Uniform, A: 0.2, B: 0.8}
	rng := rand.New(rand.NewSource(1))

	sample, err := e.Sample(5000, DefaultConfidence, rng)
	require.NoError(t, err)
	require.Len(t, sample, 5000)

	for _, v := range sample {
		assert.GreaterOrEqual(t, v, 0.2)
		assert.LessOrEqual(t, v, 0.8)
	}
}

func TestNormalSampleConverges(t *testing.T) {
	// (a, b) read as a confidence interval: midpoint is the mean, and
	// the empirical quantiles at (1-confidence) and confidence should
	// land near a and b.
	e := Estimate{Type: Normal, A: 0.4, B: 0.6}
	rng := rand.New(rand.NewSource(2))

	const n = 100000
	sample, err := e.Sample(n, 0.95, rng)
	require.NoError(t, err)

	mean := 0.0
	for _, v := range sample {
		mean += v
	}
	mean /= n
	assert.InDelta(t, 0.5, mean, 0.005)

	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	assert.InDelta(t, 0.4, sorted[int(0.05*n)], 0.01)
	assert.InDelta(t, 0.6, sorted[int(0.95*n)], 0.01)
}

func TestSampleDeterministic(t *testing.T) {
	e := Estimate{Type: Normal, A: 0.3, B: 0.7}

	s1, err := e.Sample(100, 0.95, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	s2, err := e.Sample(100, 0.95, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
}

func TestUniformInvertedBounds(t *testing.T) {
	e := Estimate{Type: Uniform, A: 0.9, B: 0.1}
	_, err := e.Sample(10, DefaultConfidence, rand.New(rand.NewSource(1)))

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNormalBadConfidence(t *testing.T) {
	e := Estimate{Type: Normal, A: 0.1, B: 0.9}
	rng := rand.New(rand.NewSource(1))

	for _, confidence := range []float64{0, 1, -0.5, 1.5} {
		_, err := e.Sample(10, confidence, rng)
		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr, "confidence=%v", confidence)
	}
}

func TestUnknownEstimateType(t *testing.T) {
	e := Estimate{Type: "TRIANGULAR", A: 0, B: 1}
	_, err := e.Sample(10, DefaultConfidence, rand.New(rand.NewSource(1)))

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = ParseEstimateType("TRIANGULAR")
	assert.Error(t, err)
}

func TestSampleSizeMustBePositive(t *testing.T) {
	e := Estimate{Type: Uniform, A: 0, B: 1}
	_, err := e.Sample(0, DefaultConfidence, rand.New(rand.NewSource(1)))

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
