// Package results aggregates exam mark rows into totals, percentage, pass/fail
// and grade bands.
package results

import (
	"github.com/shopspring/decimal"
)

// Exam names.
const (
	Quarterly  = "Quarterly"
	HalfYearly = "Half-Yearly"
	Annual     = "Annual"
)

// Exams lists the exams in the order they are sat.
var Exams = []string{Quarterly, HalfYearly, Annual}

// ValidExam reports whether name is a known exam.
func ValidExam(name string) bool {
	for _, e := range Exams {
		if e == name {
			return true
		}
	}
	return false
}

// Row is one subject line of a result document.
type Row struct {
	Subject string  `json:"subject" validate:"required"`
	Total   float64 `json:"total" validate:"gte=0"`
	Marks   float64 `json:"marks" validate:"gte=0"`
}

var (
	passMark      = decimal.NewFromInt(33)
	firstDivMark  = decimal.NewFromInt(60)
	secondDivMark = decimal.NewFromInt(45)
	hundred       = decimal.NewFromInt(100)
)

// Summary is the derived view of a result's rows.
type Summary struct {
	MaxTotal   float64 `json:"grandTotalMax"`
	Obtained   float64 `json:"grandTotalObtained"`
	Percentage string  `json:"percentage"`
	Pass       bool    `json:"pass"`
	Result     string  `json:"result"`
	Division   string  `json:"division"`
	DivShort   string  `json:"divisionShort"`
	Grade      string  `json:"grade"`
}

// Percentage returns obtained/max*100 rounded to two places, or zero when the
// maximum is zero.
func Percentage(rows []Row) decimal.Decimal {
	maxTotal, obtained := totals(rows)
	if maxTotal.IsZero() {
		return decimal.Zero
	}
	return obtained.Div(maxTotal).Mul(hundred).Round(2)
}

// Summarize computes totals, percentage, PASS/FAIL at 33 and both grading schemes.
func Summarize(rows []Row) Summary {
	maxTotal, obtained := totals(rows)
	pct := Percentage(rows)
	div := DivisionFor(pct)
	s := Summary{
		MaxTotal:   maxTotal.InexactFloat64(),
		Obtained:   obtained.InexactFloat64(),
		Percentage: pct.StringFixed(2),
		Pass:       pct.GreaterThanOrEqual(passMark),
		Division:   div.Name,
		DivShort:   div.Short,
		Grade:      LetterGrade(pct),
	}
	s.Result = "FAIL"
	if s.Pass {
		s.Result = "PASS"
	}
	return s
}

func totals(rows []Row) (maxTotal, obtained decimal.Decimal) {
	for _, r := range rows {
		maxTotal = maxTotal.Add(decimal.NewFromFloat(r.Total))
		obtained = obtained.Add(decimal.NewFromFloat(r.Marks))
	}
	return maxTotal, obtained
}

// Division is a band of the division scheme.
type Division struct {
	Name  string `json:"name"`
	Short string `json:"short"`
}

// DivisionFor bands a percentage: >=60 First, >=45 Second, otherwise Third.
func DivisionFor(pct decimal.Decimal) Division {
	switch {
	case pct.GreaterThanOrEqual(firstDivMark):
		return Division{"First", "1st"}
	case pct.GreaterThanOrEqual(secondDivMark):
		return Division{"Second", "2nd"}
	}
	return Division{"Third", "3rd"}
}

var letterBands = []struct {
	min   decimal.Decimal
	grade string
}{
	{decimal.NewFromInt(90), "A+"},
	{decimal.NewFromInt(80), "A"},
	{decimal.NewFromInt(70), "B"},
	{decimal.NewFromInt(60), "C"},
	{decimal.NewFromInt(50), "D"},
}

// LetterGrade is the five-band letter scheme used by the report card screens.
// It is independent of DivisionFor and the 33% pass mark: a 40% result passes
// with a Third division yet grades "Fail" here.
func LetterGrade(pct decimal.Decimal) string {
	for _, b := range letterBands {
		if pct.GreaterThanOrEqual(b.min) {
			return b.grade
		}
	}
	return "Fail"
}
