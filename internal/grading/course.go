package grading

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mvolkova/classkeeper/internal/models"
)

// CategoryBreakdown reports one category's contribution to a course grade.
// Inactive categories (no record with a positive max score) are still
// listed, with zero percentage and points.
type CategoryBreakdown struct {
	Category   Category `json:"category"`
	Percentage float64  `json:"percentage"`
	Earned     float64  `json:"earned"`
	Possible   float64  `json:"possible"`
	Weight     float64  `json:"weight"`
	Active     bool     `json:"active"`
}

// CourseGrade is the computed standing in one course.
type CourseGrade struct {
	CourseID   uuid.UUID           `json:"course_id"`
	CourseName string              `json:"course_name"`
	Overall    float64             `json:"overall"`
	Letter     string              `json:"letter"`
	Points     float64             `json:"points"`
	Breakdown  []CategoryBreakdown `json:"breakdown"`
	Trend      Trend               `json:"trend"`
}

// CourseGradeFor computes the weighted standing in one course from raw
// grade records. Records with a zero max score contribute to neither
// numerator nor denominator. The configured weights are renormalized over
// the categories that actually have data, so a course graded purely on
// homework still reaches 100% of its weight.
func CourseGradeFor(grades []models.Grade, w Weights, courseID uuid.UUID, courseName string) CourseGrade {
	var records []models.AssignmentGrade
	for _, g := range grades {
		if g.CourseID == courseID {
			records = append(records, g.Records...)
		}
	}

	type bucket struct{ earned, possible float64 }
	buckets := make(map[Category]*bucket, len(Categories()))
	for _, c := range Categories() {
		buckets[c] = &bucket{}
	}
	for _, r := range records {
		if r.MaxScore <= 0 {
			continue
		}
		b := buckets[Categorize(r.RawType)]
		b.earned += r.Score
		b.possible += r.MaxScore
	}

	var weightedSum, activeWeight float64
	breakdown := make([]CategoryBreakdown, 0, len(Categories()))
	for _, c := range Categories() {
		b := buckets[c]
		entry := CategoryBreakdown{Category: c, Weight: w.Of(c)}
		if b.possible > 0 {
			entry.Active = true
			entry.Earned = b.earned
			entry.Possible = b.possible
			entry.Percentage = b.earned / b.possible * 100
			weightedSum += entry.Percentage * entry.Weight
			activeWeight += entry.Weight
		}
		breakdown = append(breakdown, entry)
	}

	var overall float64
	if activeWeight > 0 {
		overall = weightedSum / activeWeight
	}

	return CourseGrade{
		CourseID:   courseID,
		CourseName: courseName,
		Overall:    overall,
		Letter:     LetterGrade(overall),
		Points:     GradePoints(overall),
		Breakdown:  breakdown,
		Trend:      TrendOf(records, DefaultTrendMinSamples),
	}
}

// Trend classifies the direction of recent scores.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// DefaultTrendMinSamples is the minimum record count before a trend is
// reported; below it the answer is always stable.
const DefaultTrendMinSamples = 4

// trendTolerance is the band (in score ratio) inside which the halves are
// considered equal.
const trendTolerance = 0.03

// TrendOf orders the records chronologically and compares the mean
// score/max ratio of the earliest half against the latest half. Records
// with a zero max score are ignored.
func TrendOf(records []models.AssignmentGrade, minSamples int) Trend {
	var usable []models.AssignmentGrade
	for _, r := range records {
		if r.MaxScore > 0 {
			usable = append(usable, r)
		}
	}
	if minSamples < 2 {
		minSamples = 2
	}
	if len(usable) < minSamples {
		return TrendStable
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].GradedAt.Before(usable[j].GradedAt) })

	mid := len(usable) / 2
	mean := func(rs []models.AssignmentGrade) float64 {
		var sum float64
		for _, r := range rs {
			sum += r.Score / r.MaxScore
		}
		return sum / float64(len(rs))
	}
	diff := mean(usable[mid:]) - mean(usable[:mid])
	switch {
	case diff > trendTolerance:
		return TrendImproving
	case diff < -trendTolerance:
		return TrendDeclining
	default:
		return TrendStable
	}
}
