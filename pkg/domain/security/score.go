package security

// Grade is the letter grade derived from a score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	// GradeE is part of the published enum but no score maps to it.
	GradeE Grade = "E"
	GradeF Grade = "F"
)

// RiskLevel is the qualitative band derived from a score.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// SecurityScore is the graded outcome of scoring an address. Higher is safer.
type SecurityScore struct {
	Score           int       `json:"score"`
	Grade           Grade     `json:"grade"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	Recommendations []string  `json:"recommendations"`
}

// SecurityAnalysis wraps the facts and score with a normalized 0..1 view of
// the two risk dimensions, used for UI weighting rather than the score.
type SecurityAnalysis struct {
	AddressFacts
	SecurityScore        SecurityScore `json:"securityScore"`
	PublicKeyExposed     bool          `json:"publicKeyExposed"`
	BalanceRiskFactor    float64       `json:"balanceRiskFactor"`
	ExposureDurationRisk float64       `json:"exposureDurationRisk"`
	DaysSinceExposure    *int          `json:"daysSinceExposure,omitempty"`
}
