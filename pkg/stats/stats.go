// Package stats provides summary statistics over protocol-branch ensembles,
// where each value carries an occurrence probability.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a figure of merit across the
// branches of a measurement ensemble.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// WeightedMean calculates the probability-weighted mean of a slice of values
func WeightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, weights)
}

// WeightedStdDev calculates the probability-weighted standard deviation
func WeightedStdDev(values, weights []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, weights)
}

// Summarize computes the full weighted summary of values. Weights may be nil
// for equally likely branches; otherwise they must match values in length.
func Summarize(values, weights []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Mean:   WeightedMean(values, weights),
		StdDev: WeightedStdDev(values, weights),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
}
