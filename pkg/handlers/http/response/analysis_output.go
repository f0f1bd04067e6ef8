package response

import (
	"github.com/qscore-labs/qscore/pkg/app/scoring"
	"github.com/qscore-labs/qscore/pkg/domain/security"
)

type AnalysisOutput struct {
	security.SecurityAnalysis
	Display DisplayOutput `json:"display"`
}

// DisplayOutput carries UI ready strings derived from the analysis.
type DisplayOutput struct {
	ShortAddress     string `json:"shortAddress"`
	Balance          string `json:"balance"`
	ExposureDuration string `json:"exposureDuration,omitempty"`
	GradeColor       string `json:"gradeColor"`
	RiskLevelColor   string `json:"riskLevelColor"`
	OGImage          string `json:"ogImage"`
}

func NewAnalysisOutput(analysis security.SecurityAnalysis) AnalysisOutput {
	display := DisplayOutput{
		ShortAddress:   scoring.FormatAddress(analysis.Address),
		Balance:        scoring.FormatEthBalance(analysis.BalanceEth),
		GradeColor:     scoring.GradeColor(analysis.SecurityScore.Grade),
		RiskLevelColor: scoring.RiskLevelColor(analysis.SecurityScore.RiskLevel),
		OGImage:        scoring.OGImageFilename(analysis.SecurityScore.Grade),
	}
	if analysis.DaysSinceExposure != nil {
		display.ExposureDuration = scoring.FormatExposureDuration(*analysis.DaysSinceExposure)
	}
	return AnalysisOutput{
		SecurityAnalysis: analysis,
		Display:          display,
	}
}

type ErrorOutput struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
