package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qscore-labs/qscore/pkg/domain/security"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	daysPerMonth = 30
	daysPerYear  = 365
)

var balancePrinter = message.NewPrinter(language.English)

var gradeColors = map[security.Grade]string{
	security.GradeAPlus: "#16a34a",
	security.GradeA:     "#22c55e",
	security.GradeB:     "#84cc16",
	security.GradeC:     "#eab308",
	security.GradeD:     "#f97316",
	security.GradeE:     "#ef4444",
	security.GradeF:     "#dc2626",
}

var riskLevelColors = map[security.RiskLevel]string{
	security.RiskVeryLow:  "#16a34a",
	security.RiskLow:      "#84cc16",
	security.RiskMedium:   "#eab308",
	security.RiskHigh:     "#f97316",
	security.RiskVeryHigh: "#dc2626",
}

var ogImageFilenames = map[security.Grade]string{
	security.GradeAPlus: "og-grade-a-plus.png",
	security.GradeA:     "og-grade-a.png",
	security.GradeB:     "og-grade-b.png",
	security.GradeC:     "og-grade-c.png",
	security.GradeD:     "og-grade-d.png",
	security.GradeE:     "og-grade-e.png",
	security.GradeF:     "og-grade-f.png",
}

const (
	defaultColor      = "#6b7280"
	defaultOGFilename = "og-default.png"
)

// FormatEthBalance renders an ether amount for display, always suffixed
// with " ETH". Dust uses exponent notation, large amounts are grouped.
func FormatEthBalance(balance float64) string {
	switch {
	case balance == 0:
		return "0 ETH"
	case balance < 0.001:
		return formatExponent(balance) + " ETH"
	case balance < 1:
		return strconv.FormatFloat(balance, 'f', 4, 64) + " ETH"
	case balance < 1000:
		return strconv.FormatFloat(balance, 'f', 2, 64) + " ETH"
	default:
		return balancePrinter.Sprintf("%.0f", math.Round(balance)) + " ETH"
	}
}

// formatExponent prints two fraction digits with an unpadded exponent,
// e.g. 5.00e-4.
func formatExponent(v float64) string {
	s := strconv.FormatFloat(v, 'e', 2, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// FormatExposureDuration renders a day count using 30-day months and
// 365-day years.
func FormatExposureDuration(days int) string {
	switch {
	case days < 1:
		return "less than a day"
	case days == 1:
		return "1 day"
	case days < daysPerMonth:
		return fmt.Sprintf("%d days", days)
	case days < daysPerYear:
		return pluralize(days/daysPerMonth, "month")
	}

	years := days / daysPerYear
	months := (days % daysPerYear) / daysPerMonth
	if months == 0 {
		return pluralize(years, "year")
	}
	return pluralize(years, "year") + ", " + pluralize(months, "month")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func GradeColor(grade security.Grade) string {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return defaultColor
}

func RiskLevelColor(level security.RiskLevel) string {
	if c, ok := riskLevelColors[level]; ok {
		return c
	}
	return defaultColor
}

// OGImageFilename returns the social preview image for a grade.
func OGImageFilename(grade security.Grade) string {
	if f, ok := ogImageFilenames[grade]; ok {
		return f
	}
	return defaultOGFilename
}

// FormatAddress shortens a hex address to 0x1234...abcd. Short input is
// returned unchanged.
func FormatAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
