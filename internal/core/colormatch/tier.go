package colormatch

import "fmt"

// Tier grades how close a colour is to its nearest palette entry.
type Tier string

const (
	TierExcellent      Tier = "excellent"
	TierVeryClose      Tier = "very_close"
	TierGood           Tier = "good"
	TierApproximate    Tier = "approximate"
	TierNotRecommended Tier = "not_recommended"
)

// Tiers lists the tiers from best to worst.
var Tiers = []Tier{TierExcellent, TierVeryClose, TierGood, TierApproximate, TierNotRecommended}

// Rank orders tiers; lower is better. Unknown tiers rank last.
func (t Tier) Rank() int {
	for i, v := range Tiers {
		if v == t {
			return i
		}
	}
	return len(Tiers)
}

// Label is the human form of the tier.
func (t Tier) Label() string {
	switch t {
	case TierExcellent:
		return "Excellent"
	case TierVeryClose:
		return "Very close"
	case TierGood:
		return "Good"
	case TierApproximate:
		return "Approximate"
	default:
		return "Not recommended"
	}
}

// Thresholds are inclusive upper distance bounds for each tier. Anything
// beyond Approximate is not recommended.
type Thresholds struct {
	Excellent   float64 `yaml:"excellent"   json:"excellent"`
	VeryClose   float64 `yaml:"very_close"  json:"very_close"`
	Good        float64 `yaml:"good"        json:"good"`
	Approximate float64 `yaml:"approximate" json:"approximate"`
}

// DefaultThresholds returns the standard distance buckets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Excellent:   16,
		VeryClose:   32,
		Good:        48,
		Approximate: 80,
	}
}

// Validate checks the bounds are positive and strictly increasing.
func (th Thresholds) Validate() error {
	bounds := []float64{th.Excellent, th.VeryClose, th.Good, th.Approximate}
	if bounds[0] <= 0 {
		return fmt.Errorf("excellent threshold must be positive")
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return fmt.Errorf("thresholds must be strictly increasing (%s <= %s)", Tiers[i], Tiers[i-1])
		}
	}
	return nil
}

// Classify maps a distance to its tier.
func (th Thresholds) Classify(distance float64) Tier {
	switch {
	case distance <= th.Excellent:
		return TierExcellent
	case distance <= th.VeryClose:
		return TierVeryClose
	case distance <= th.Good:
		return TierGood
	case distance <= th.Approximate:
		return TierApproximate
	default:
		return TierNotRecommended
	}
}
