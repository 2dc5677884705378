package domain

import "math"

// RiskTier is the flood risk bucket derived from the discharge-to-baseline ratio.
type RiskTier string

const (
	TierUnknown RiskTier = "Unknown"
	TierLow     RiskTier = "Low"
	TierMedium  RiskTier = "Medium"
	TierHigh    RiskTier = "High"
)

// Ratio boundaries are inclusive on the upper side of each bucket.
const (
	LowRiskMaxRatio    = 0.8
	MediumRiskMaxRatio = 1.2
)

// Display colors per tier
const (
	ColorUnknown = "#f7f7f7"
	ColorLow     = "#4CAF50"
	ColorMedium  = "#FFC107"
	ColorHigh    = "#F44336"
)

// RiskAssessment is the classified ratio for a single observation.
type RiskAssessment struct {
	Ratio *float64 `json:"ratio"`
	Tier  RiskTier `json:"tier"`
	Color string   `json:"color"`
}

// Ratio divides discharge by baseline. It returns nil when the baseline is
// unknown or not positive, which classifies as TierUnknown.
func Ratio(discharge float64, baseline *float64) *float64 {
	if baseline == nil || math.IsNaN(*baseline) || *baseline <= 0 {
		return nil
	}
	r := discharge / *baseline
	return &r
}

// Classify maps a ratio to its risk tier and display color.
func Classify(ratio *float64) RiskAssessment {
	if ratio == nil || math.IsNaN(*ratio) {
		return RiskAssessment{Tier: TierUnknown, Color: ColorUnknown}
	}

	r := *ratio
	switch {
	case r <= LowRiskMaxRatio:
		return RiskAssessment{Ratio: &r, Tier: TierLow, Color: ColorLow}
	case r <= MediumRiskMaxRatio:
		return RiskAssessment{Ratio: &r, Tier: TierMedium, Color: ColorMedium}
	default:
		return RiskAssessment{Ratio: &r, Tier: TierHigh, Color: ColorHigh}
	}
}
