package scoring

import (
	"testing"

	"github.com/qscore-labs/qscore/pkg/domain/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func exposedFacts(balance float64, days int) security.AddressFacts {
	return security.AddressFacts{
		Address:                   "0x00000000000000000000000000000000000000aa",
		BalanceEth:                balance,
		HasOutgoingTransactions:   true,
		FirstTransactionTimestamp: int64Ptr(1_600_000_000),
		DaysSinceFirstTransaction: intPtr(days),
	}
}

func TestScore_SmartContract(t *testing.T) {
	tests := []struct {
		name  string
		facts security.AddressFacts
	}{
		{
			name:  "empty contract",
			facts: security.AddressFacts{IsSmartContract: true},
		},
		{
			name: "rich exposed contract",
			facts: security.AddressFacts{
				IsSmartContract:           true,
				BalanceEth:                1_000_000,
				HasOutgoingTransactions:   true,
				FirstTransactionTimestamp: int64Ptr(1),
				DaysSinceFirstTransaction: intPtr(3000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.facts)
			assert.Equal(t, 100, analysis.SecurityScore.Score)
			assert.Equal(t, security.GradeAPlus, analysis.SecurityScore.Grade)
			assert.Equal(t, []string{RecommendationContract}, analysis.SecurityScore.Recommendations)
			assert.False(t, analysis.PublicKeyExposed)
			assert.Nil(t, analysis.DaysSinceExposure)
		})
	}
}

func TestScore_EmptyUnexposed(t *testing.T) {
	score := Score(security.AddressFacts{Address: "0xabc"})

	assert.Equal(t, 100, score.Score)
	assert.Equal(t, security.GradeAPlus, score.Grade)
	assert.Equal(t, security.RiskVeryLow, score.RiskLevel)
	assert.Equal(t, []string{RecommendationHidden, RecommendationEmpty}, score.Recommendations)
}

func TestScore_BalancePenalties(t *testing.T) {
	tests := []struct {
		name      string
		balance   float64
		exposed   bool
		wantScore int
		wantSplit bool
	}{
		{name: "dust hidden", balance: 0.5, wantScore: 95},
		{name: "minor hidden", balance: 5, wantScore: 90},
		{name: "small hidden", balance: 50, wantScore: 80, wantSplit: true},
		{name: "medium hidden", balance: 500, wantScore: 70, wantSplit: true},
		{name: "large hidden", balance: 5000, wantScore: 60, wantSplit: true},
		{name: "whale hidden", balance: 50000, wantScore: 45, wantSplit: true},
		{name: "boundary 10 is minor", balance: 10, wantScore: 90},
		{name: "boundary 1 is dust", balance: 1, wantScore: 95},
		{name: "empty exposed", balance: 0, exposed: true, wantScore: 60},
		{name: "dust exposed", balance: 0.5, exposed: true, wantScore: 55},
		{name: "whale exposed", balance: 50000, exposed: true, wantScore: 5, wantSplit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := security.AddressFacts{BalanceEth: tt.balance}
			if tt.exposed {
				facts = exposedFacts(tt.balance, 10)
			}

			score := Score(facts)
			assert.Equal(t, tt.wantScore, score.Score)
			if tt.wantSplit {
				assert.Contains(t, score.Recommendations, RecommendationSplit)
			} else {
				assert.NotContains(t, score.Recommendations, RecommendationSplit)
			}
		})
	}
}

func TestScore_RecommendationOrder(t *testing.T) {
	hidden := Score(security.AddressFacts{BalanceEth: 50})
	assert.Equal(t, []string{RecommendationHidden, RecommendationSplit, RecommendationReceive}, hidden.Recommendations)

	exposed := Score(exposedFacts(50, 10))
	assert.Equal(t, []string{RecommendationExposed, RecommendationSplit}, exposed.Recommendations)

	exposedEmpty := Score(exposedFacts(0, 10))
	assert.Equal(t, []string{RecommendationExposed, RecommendationEmpty}, exposedEmpty.Recommendations)
}

func TestScore_MonotonicInBalance(t *testing.T) {
	balances := []float64{0, 0.0001, 0.5, 1, 1.5, 10, 10.5, 100, 100.5, 1000, 1000.5, 10000, 10000.5, 1e9}

	for _, exposed := range []bool{false, true} {
		prev := 101
		for _, b := range balances {
			facts := security.AddressFacts{BalanceEth: b}
			if exposed {
				facts = exposedFacts(b, 100)
			}
			got := Score(facts).Score
			assert.LessOrEqualf(t, got, prev, "exposed=%v balance=%v", exposed, b)
			prev = got
		}
	}
}

func TestScore_ExposureNeverHelps(t *testing.T) {
	for _, b := range []float64{0, 0.01, 2, 20, 200, 2000, 20000} {
		hidden := Score(security.AddressFacts{BalanceEth: b}).Score
		exposed := Score(exposedFacts(b, 5)).Score
		assert.LessOrEqualf(t, exposed, hidden, "balance=%v", b)
	}
}

func TestScore_WorstCase(t *testing.T) {
	score := Score(exposedFacts(1e9, 5000))

	// 100 - 40 (exposed) - 55 (>= 10000 ETH)
	assert.Equal(t, 5, score.Score)
	assert.Equal(t, security.GradeF, score.Grade)
	assert.Equal(t, security.RiskVeryHigh, score.RiskLevel)
}

func TestBuildScore_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		raw   float64
		score int
		grade security.Grade
		risk  security.RiskLevel
	}{
		{"below zero", -30, 0, security.GradeF, security.RiskVeryHigh},
		{"above max", 130, 100, security.GradeAPlus, security.RiskVeryLow},
		{"rounds half up", 64.5, 65, security.GradeC, security.RiskMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildScore(tt.raw, nil)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.grade, got.Grade)
			assert.Equal(t, tt.risk, got.RiskLevel)
		})
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	analysis := Analyze(exposedFacts(50, 400))

	require.NotNil(t, analysis.DaysSinceExposure)
	assert.Equal(t, 40, analysis.SecurityScore.Score)
	// 40 sits below the D floor of 50.
	assert.Equal(t, security.GradeF, analysis.SecurityScore.Grade)
	assert.Equal(t, security.RiskHigh, analysis.SecurityScore.RiskLevel)
	assert.True(t, analysis.PublicKeyExposed)
	assert.Equal(t, 400, *analysis.DaysSinceExposure)
	assert.Equal(t, 0.6, analysis.BalanceRiskFactor)
	assert.Equal(t, 0.8, analysis.ExposureDurationRisk)
}

func TestAnalyze_UnexposedHasNoExposureDays(t *testing.T) {
	analysis := Analyze(security.AddressFacts{BalanceEth: 2})

	assert.False(t, analysis.PublicKeyExposed)
	assert.Nil(t, analysis.DaysSinceExposure)
	assert.Equal(t, 0.0, analysis.ExposureDurationRisk)
	assert.Equal(t, 0.4, analysis.BalanceRiskFactor)
}

func TestGetGrade(t *testing.T) {
	tests := []struct {
		score int
		want  security.Grade
	}{
		{100, security.GradeAPlus},
		{95, security.GradeAPlus},
		{94, security.GradeA},
		{85, security.GradeA},
		{84, security.GradeB},
		{75, security.GradeB},
		{74, security.GradeC},
		{65, security.GradeC},
		{64, security.GradeD},
		{50, security.GradeD},
		{49, security.GradeF},
		{0, security.GradeF},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, GetGrade(tt.score), "score %d", tt.score)
	}

	for s := 0; s <= 100; s++ {
		assert.NotEqual(t, security.GradeE, GetGrade(s))
	}
}

func TestGetRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  security.RiskLevel
	}{
		{90, security.RiskVeryLow},
		{89, security.RiskLow},
		{75, security.RiskLow},
		{74, security.RiskMedium},
		{60, security.RiskMedium},
		{59, security.RiskHigh},
		{40, security.RiskHigh},
		{39, security.RiskVeryHigh},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, GetRiskLevel(tt.score), "score %d", tt.score)
	}
}

func TestExposureDurationRisk(t *testing.T) {
	tests := []struct {
		days *int
		want float64
	}{
		{nil, 0},
		{intPtr(0), 0},
		{intPtr(30), 0},
		{intPtr(31), 0.2},
		{intPtr(91), 0.4},
		{intPtr(181), 0.6},
		{intPtr(365), 0.6},
		{intPtr(366), 0.8},
		{intPtr(731), 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExposureDurationRisk(tt.days))
	}
}

func TestNewScorer(t *testing.T) {
	s := NewScorer()
	facts := exposedFacts(3, 12)

	assert.Equal(t, Score(facts), s.Score(facts))
	assert.Equal(t, Analyze(facts), s.Analyze(facts))
}
