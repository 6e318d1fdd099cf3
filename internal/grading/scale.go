// Package grading computes letter grades, GPA, weighted course percentages
// and score trends from raw grade records. Every function is pure and
// total: edge cases resolve to defined defaults, never to errors.
package grading

// LetterGrade maps a percentage to a letter on fixed breakpoints. Values
// above 100 (extra credit) still map to A+; negative values map to F.
func LetterGrade(pct float64) string {
	switch {
	case pct >= 97:
		return "A+"
	case pct >= 93:
		return "A"
	case pct >= 90:
		return "A-"
	case pct >= 87:
		return "B+"
	case pct >= 83:
		return "B"
	case pct >= 80:
		return "B-"
	case pct >= 77:
		return "C+"
	case pct >= 73:
		return "C"
	case pct >= 70:
		return "C-"
	case pct >= 67:
		return "D+"
	case pct >= 63:
		return "D"
	case pct >= 60:
		return "D-"
	default:
		return "F"
	}
}

// GradePoints maps a percentage to the 4.0 scale using the same breakpoints
// as LetterGrade.
func GradePoints(pct float64) float64 {
	switch {
	case pct >= 93:
		return 4.0
	case pct >= 90:
		return 3.7
	case pct >= 87:
		return 3.3
	case pct >= 83:
		return 3.0
	case pct >= 80:
		return 2.7
	case pct >= 77:
		return 2.3
	case pct >= 73:
		return 2.0
	case pct >= 70:
		return 1.7
	case pct >= 67:
		return 1.3
	case pct >= 63:
		return 1.0
	case pct >= 60:
		return 0.7
	default:
		return 0.0
	}
}

// Color is a semantic band used by callers for display. It carries no
// meaning inside this package.
type Color string

const (
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

// GradeColor bands a percentage for display.
func GradeColor(pct float64) Color {
	switch {
	case pct >= 90:
		return ColorGreen
	case pct >= 80:
		return ColorBlue
	case pct >= 70:
		return ColorYellow
	case pct >= 60:
		return ColorOrange
	default:
		return ColorRed
	}
}

// GPA is the arithmetic mean of each course's grade points. An empty input
// yields 0, not NaN.
func GPA(results []CourseGrade) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Points
	}
	return sum / float64(len(results))
}

// PercentageNeeded solves for the percentage of the remaining points needed
// to land on target overall. The second return is false when the target is
// unreachable: no points remain, or the requirement exceeds 100%. Callers
// must treat false as "not achievable", never as zero.
func PercentageNeeded(currentEarned, currentTotal, remainingTotal, target float64) (float64, bool) {
	if remainingTotal <= 0 {
		return 0, false
	}
	needed := (target/100*(currentTotal+remainingTotal) - currentEarned) / remainingTotal * 100
	if needed > 100 {
		return 0, false
	}
	if needed < 0 {
		return 0, true
	}
	return needed, true
}
