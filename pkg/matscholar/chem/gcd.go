package chem

import "math"

// GCDFloat returns the greatest common divisor of values, treating any
// remainder at or below tol as zero.
func GCDFloat(values []float64, tol float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := values[0]
	for _, v := range values {
		n = pairGCD(n, v, tol)
	}
	return n
}

func pairGCD(a, b, tol float64) float64 {
	for b > tol {
		a, b = b, math.Mod(a, b)
	}
	return a
}
