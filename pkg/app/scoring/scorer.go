package scoring

import (
	"math"

	"github.com/qscore-labs/qscore/pkg/domain/security"
)

const (
	maxScore = 100
	minScore = 0

	exposurePenalty = 40

	whaleBalanceEth  = 10000
	largeBalanceEth  = 1000
	mediumBalanceEth = 100
	smallBalanceEth  = 10
	minorBalanceEth  = 1

	whalePenalty  = 55
	largePenalty  = 40
	mediumPenalty = 30
	smallPenalty  = 20
	minorPenalty  = 10
	dustPenalty   = 5
)

const (
	gradeAPlusFloor = 95
	gradeAFloor     = 85
	gradeBFloor     = 75
	gradeCFloor     = 65
	gradeDFloor     = 50

	riskVeryLowFloor = 90
	riskLowFloor     = 75
	riskMediumFloor  = 60
	riskHighFloor    = 40
)

const (
	RecommendationContract = "Smart contract analysis is coming soon. Contract wallets are not risk-modeled yet."
	RecommendationExposed  = "Your public key has been exposed on-chain by an outgoing transaction. Migrate your funds to a fresh address that has never sent a transaction."
	RecommendationHidden   = "Your public key has not been exposed on-chain yet. Keep it that way by not sending transactions from this address."
	RecommendationSplit    = "Consider splitting your funds across multiple fresh addresses to limit the impact of a single compromised key."
	RecommendationEmpty    = "This address is empty, so it has minimal risk."
	RecommendationReceive  = "Use this address as receive-only and move funds out through a fresh address when needed."
)

type Scorer interface {
	Score(facts security.AddressFacts) security.SecurityScore
	Analyze(facts security.AddressFacts) security.SecurityAnalysis
}

type scorer struct{}

func NewScorer() Scorer {
	return scorer{}
}

func (scorer) Score(facts security.AddressFacts) security.SecurityScore {
	return Score(facts)
}

func (scorer) Analyze(facts security.AddressFacts) security.SecurityAnalysis {
	return Analyze(facts)
}

// Score grades an address from its facts. Higher scores mean lower quantum
// risk. It never fails for facts that satisfy AddressFacts.Validate.
func Score(facts security.AddressFacts) security.SecurityScore {
	score := float64(maxScore)
	recommendations := make([]string, 0, 4)

	if facts.IsSmartContract {
		recommendations = append(recommendations, RecommendationContract)
		return buildScore(score, recommendations)
	}

	exposed := facts.HasOutgoingTransactions
	if exposed {
		score -= exposurePenalty
		recommendations = append(recommendations, RecommendationExposed)
	} else {
		recommendations = append(recommendations, RecommendationHidden)
	}

	penalty, split := balancePenalty(facts.BalanceEth)
	score -= float64(penalty)
	if split {
		recommendations = append(recommendations, RecommendationSplit)
	}
	if facts.BalanceEth == 0 {
		recommendations = append(recommendations, RecommendationEmpty)
	}

	if !exposed && facts.BalanceEth > 0 {
		recommendations = append(recommendations, RecommendationReceive)
	}

	return buildScore(score, recommendations)
}

// Analyze scores the facts and adds the normalized risk dimensions.
func Analyze(facts security.AddressFacts) security.SecurityAnalysis {
	exposed := facts.HasOutgoingTransactions && !facts.IsSmartContract

	analysis := security.SecurityAnalysis{
		AddressFacts:         facts,
		SecurityScore:        Score(facts),
		PublicKeyExposed:     exposed,
		BalanceRiskFactor:    BalanceRiskFactor(facts.BalanceEth),
		ExposureDurationRisk: ExposureDurationRisk(facts.DaysSinceFirstTransaction),
	}
	if exposed && facts.DaysSinceFirstTransaction != nil {
		days := *facts.DaysSinceFirstTransaction
		analysis.DaysSinceExposure = &days
	}
	return analysis
}

// balancePenalty returns the deduction for a balance and whether the balance
// is large enough to warrant splitting it.
func balancePenalty(balanceEth float64) (int, bool) {
	switch {
	case balanceEth > whaleBalanceEth:
		return whalePenalty, true
	case balanceEth > largeBalanceEth:
		return largePenalty, true
	case balanceEth > mediumBalanceEth:
		return mediumPenalty, true
	case balanceEth > smallBalanceEth:
		return smallPenalty, true
	case balanceEth > minorBalanceEth:
		return minorPenalty, false
	case balanceEth > 0:
		return dustPenalty, false
	default:
		return 0, false
	}
}

func buildScore(raw float64, recommendations []string) security.SecurityScore {
	score := int(math.Round(math.Max(minScore, math.Min(maxScore, raw))))
	return security.SecurityScore{
		Score:           score,
		Grade:           GetGrade(score),
		RiskLevel:       GetRiskLevel(score),
		Recommendations: recommendations,
	}
}

// GetGrade maps a rounded score to a letter grade. GradeE is never returned.
func GetGrade(score int) security.Grade {
	switch {
	case score >= gradeAPlusFloor:
		return security.GradeAPlus
	case score >= gradeAFloor:
		return security.GradeA
	case score >= gradeBFloor:
		return security.GradeB
	case score >= gradeCFloor:
		return security.GradeC
	case score >= gradeDFloor:
		return security.GradeD
	default:
		return security.GradeF
	}
}

func GetRiskLevel(score int) security.RiskLevel {
	switch {
	case score >= riskVeryLowFloor:
		return security.RiskVeryLow
	case score >= riskLowFloor:
		return security.RiskLow
	case score >= riskMediumFloor:
		return security.RiskMedium
	case score >= riskHighFloor:
		return security.RiskHigh
	default:
		return security.RiskVeryHigh
	}
}

func BalanceRiskFactor(balanceEth float64) float64 {
	switch {
	case balanceEth > largeBalanceEth:
		return 1.0
	case balanceEth > mediumBalanceEth:
		return 0.8
	case balanceEth > smallBalanceEth:
		return 0.6
	case balanceEth > minorBalanceEth:
		return 0.4
	case balanceEth > 0:
		return 0.2
	default:
		return 0
	}
}

// ExposureDurationRisk maps days since first exposure onto [0,1]. Missing
// days count as zero.
func ExposureDurationRisk(days *int) float64 {
	if days == nil {
		return 0
	}
	switch d := *days; {
	case d > 730:
		return 1.0
	case d > 365:
		return 0.8
	case d > 180:
		return 0.6
	case d > 90:
		return 0.4
	case d > 30:
		return 0.2
	default:
		return 0
	}
}
