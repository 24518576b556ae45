/*
Package grading maps exam percentages onto the school's grade scale.

The scale is a fixed descending-threshold table. Calculate is a total
function: out-of-range inputs are not validated and simply fall through
the bands (negative percentages grade F, >100 grades A+).
*/
package grading

import "github.com/shopspring/decimal"

// Grade is one band of the school's grading scale.
type Grade struct {
	Grade   string
	Points  int
	Remarks string
}

// band pairs a minimum percentage with its grade.
type band struct {
	min   float64
	grade Grade
}

// bands in descending threshold order. The last entry is the catch-all.
var bands = []band{
	{90, Grade{"A+", 10, "Outstanding"}},
	{80, Grade{"A", 9, "Excellent"}},
	{70, Grade{"B+", 8, "Very Good"}},
	{60, Grade{"B", 7, "Good"}},
	{50, Grade{"C", 6, "Average"}},
	{40, Grade{"D", 5, "Pass"}},
}

var failGrade = Grade{"F", 0, "Fail"}

// Calculate returns the grade band for a percentage. Deterministic,
// never errors.
func Calculate(percentage float64) Grade {
	for _, b := range bands {
		if percentage >= b.min {
			return b.grade
		}
	}
	return failGrade
}

// Percentage derives a percentage from marks, rounded to 2 decimal
// places. A zero maximum yields 0 rather than dividing by zero; exam
// terms with unconfigured papers show as 0% instead of crashing entry.
func Percentage(marksObtained, maxMarks float64) float64 {
	if maxMarks == 0 {
		return 0
	}
	pct := decimal.NewFromFloat(marksObtained).
		Div(decimal.NewFromFloat(maxMarks)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}

// Evaluate grades a mark pair directly.
func Evaluate(marksObtained, maxMarks float64) (float64, Grade) {
	pct := Percentage(marksObtained, maxMarks)
	return pct, Calculate(pct)
}
