package results

import (
	"strings"
	"unicode"
)

// Normalize lowercases a subject name and strips everything but letters.
func Normalize(subject string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(subject) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SubjectsMatch compares two subject names by normalized containment in either
// direction. This is a fuzzy join: overlapping names such as "Science" and
// "Social Science" match each other, so the first candidate wins. Names that
// normalize to nothing never match.
func SubjectsMatch(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Match returns the first row of rows whose subject matches subject, or a
// zero row {total: 0, marks: 0} carrying the queried subject name.
func Match(rows []Row, subject string) (Row, bool) {
	for _, r := range rows {
		if SubjectsMatch(r.Subject, subject) {
			return r, true
		}
	}
	return Row{Subject: subject}, false
}

// CombinedRow pairs the Half-Yearly and Annual marks of one subject.
type CombinedRow struct {
	Subject    string  `json:"subject"`
	HalfYearly Row     `json:"halfYearly"`
	Annual     Row     `json:"annual"`
	Total      float64 `json:"total"`
	Marks      float64 `json:"marks"`
}

// Combine joins Half-Yearly and Annual rows for the combined marksheet. The
// Half-Yearly order drives the output; Annual rows left unmatched are appended
// with an empty Half-Yearly side.
//
// Unlike Match, each Annual row is consumed by the first Half-Yearly subject
// that fuzzily matches it. A later Half-Yearly subject that only overlaps an
// already consumed row ("Science" after "Social Science") gets the zero row.
// Containment can still pair a subject with the wrong row when the overlapping
// name comes first.
func Combine(halfYearly, annual []Row) []CombinedRow {
	used := make([]bool, len(annual))
	out := make([]CombinedRow, 0, len(halfYearly))
	for _, h := range halfYearly {
		a := Row{Subject: h.Subject}
		for i, r := range annual {
			if !used[i] && SubjectsMatch(r.Subject, h.Subject) {
				a, used[i] = r, true
				break
			}
		}
		out = append(out, combined(h.Subject, h, a))
	}
	for i, r := range annual {
		if !used[i] {
			out = append(out, combined(r.Subject, Row{Subject: r.Subject}, r))
		}
	}
	return out
}

func combined(subject string, h, a Row) CombinedRow {
	return CombinedRow{
		Subject:    subject,
		HalfYearly: h,
		Annual:     a,
		Total:      h.Total + a.Total,
		Marks:      h.Marks + a.Marks,
	}
}

// CombinedRows flattens combined rows back into plain rows for Summarize.
func CombinedRows(rows []CombinedRow) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Subject: r.Subject, Total: r.Total, Marks: r.Marks}
	}
	return out
}
