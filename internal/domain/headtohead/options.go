package headtohead

import "github.com/okian/fieldtrials/internal/domain/model"

// DefaultThreshold is the absolute difference at or below which a pairing ties.
const DefaultThreshold = 1.0

type options struct {
	threshold   float64
	groupKey    string
	locationKey string
	valueKey    string
}

func defaultOptions() options {
	return options{
		threshold:   DefaultThreshold,
		groupKey:    model.ColGroup,
		locationKey: model.ColLocation,
		valueKey:    model.ColProductivity,
	}
}

// Option configures a comparison.
type Option func(*options)

// WithThreshold sets the tie threshold in productivity units.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithValueKey compares a numeric column other than productivity.
func WithValueKey(col string) Option {
	return func(o *options) {
		if col != "" {
			o.valueKey = col
		}
	}
}

// WithLocationKey pairs observations on a column other than location_id.
func WithLocationKey(col string) Option {
	return func(o *options) {
		if col != "" {
			o.locationKey = col
		}
	}
}
