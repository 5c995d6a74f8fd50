package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Variance calculates the population variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := stat.Mean(data, nil)
	var sum float64
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(data))
}

// CoefficientOfVariation returns std dev / mean, a scale-free volatility measure.
// A non-positive mean yields 0 rather than a degenerate ratio.
func CoefficientOfVariation(data []float64) float64 {
	mean := Mean(data)
	if mean <= 0 {
		return 0
	}
	return StdDev(data) / mean
}

// LinearRegression computes slope and R-squared for a series of y-values
// where x = 0, 1, 2, ... (the index).
func LinearRegression(points []float64) (slope, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0
	}
	xs := make([]float64, len(points))
	for i := range points {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, points, nil, false)
	meanY := stat.Mean(points, nil)

	var ssRes, ssTot float64
	for i, y := range points {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, 1
	}
	return slope, 1 - ssRes/ssTot
}
