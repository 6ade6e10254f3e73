package scoring

import "fmt"

// Default decision matrix weights.
const (
	DefaultMeanWeight = 0.5
	DefaultMaxWeight  = 0.3
	DefaultMinWeight  = 0.2
)

// Weights sets the importance of each normalized metric in the final score.
// They conventionally sum to 1 but are not required to.
type Weights struct {
	Mean float64 `json:"mean" koanf:"mean"`
	Max  float64 `json:"max" koanf:"max"`
	Min  float64 `json:"min" koanf:"min"`
}

// DefaultWeights returns the 0.5 / 0.3 / 0.2 weighting.
func DefaultWeights() Weights {
	return Weights{Mean: DefaultMeanWeight, Max: DefaultMaxWeight, Min: DefaultMinWeight}
}

// Sum returns the highest score any group can reach.
func (w Weights) Sum() float64 {
	return w.Mean + w.Max + w.Min
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"mean", w.Mean}, {"max", w.Max}, {"min", w.Min}} {
		if f.v < 0 {
			return fmt.Errorf("%w: %s weight is %g", ErrInvalidWeights, f.name, f.v)
		}
	}
	return nil
}
