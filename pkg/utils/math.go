// Package utils holds small helpers shared across layers
package utils

import (
	"math"
	"time"
)

// ClampDuration bounds d to [min, max]
func ClampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// CeilInt rounds f up to the nearest integer
func CeilInt(f float64) int {
	return int(math.Ceil(f))
}
