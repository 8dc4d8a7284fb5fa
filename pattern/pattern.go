package pattern

import "github.com/jsphweid/loopgen/model"

// Normalize tiles p to exactly n steps. An empty pattern becomes n silent
// steps and a pattern longer than n is truncated.
func Normalize(p model.StepPattern, n int) model.CanonicalPattern {
	if n <= 0 {
		return model.CanonicalPattern{}
	}
	res := make(model.CanonicalPattern, 0, n)
	if len(p) == 0 {
		return res[:n]
	}
	repeats := n / len(p)
	remainder := n % len(p)
	for i := 0; i < repeats; i++ {
		res = append(res, p...)
	}
	res = append(res, p[:remainder]...)

	// final clamp
	if len(res) > n {
		res = res[:n]
	}
	for len(res) < n {
		res = append(res, false)
	}
	return res
}
