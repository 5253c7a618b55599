package benchmark

import (
	"math"
	"time"
)

// z999 is the two-sided normal quantile for a 99.9% interval.
const z999 = 3.29

// Score summarizes measured iterations.
type Score struct {
	Mean   float64 `json:"mean"`
	Error  float64 `json:"error"` // half-width of the 99.9% interval
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	N      int     `json:"n"`
}

// Summarize computes mean, sample standard deviation and range.
func Summarize(samples []float64) Score {
	n := len(samples)
	if n == 0 {
		return Score{}
	}
	s := Score{N: n, Min: samples[0], Max: samples[0]}
	var sum float64
	for _, v := range samples {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Mean = sum / float64(n)
	if n < 2 {
		return s
	}
	var sq float64
	for _, v := range samples {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(n-1))
	s.Error = z999 * s.StdDev / math.Sqrt(float64(n))
	return s
}

// Samples collects every measured iteration of every trial in one mode.
func Samples(trials []Trial, mode Mode, unit time.Duration) []float64 {
	var out []float64
	for _, t := range trials {
		for _, it := range t.Iterations {
			out = append(out, it.Score(mode, unit))
		}
	}
	return out
}
