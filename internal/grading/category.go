package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Category buckets a scored record for weighting purposes.
type Category int

const (
	CategoryAssignment Category = iota
	CategoryQuiz
	CategoryParticipation
	CategoryAttendance
)

// Categories lists all buckets in breakdown order.
func Categories() []Category {
	return []Category{CategoryAssignment, CategoryQuiz, CategoryParticipation, CategoryAttendance}
}

func (c Category) String() string {
	switch c {
	case CategoryQuiz:
		return "quizzes"
	case CategoryParticipation:
		return "participation"
	case CategoryAttendance:
		return "attendance"
	default:
		return "assignments"
	}
}

// Categorize maps the backend's free-text record type to a bucket. The
// contract is case-insensitive substring matching: "quiz" -> quiz,
// "attend" -> attendance, "particip" -> participation, anything else falls
// into the assignment bucket.
func Categorize(rawType string) Category {
	s := strings.ToLower(rawType)
	switch {
	case strings.Contains(s, "quiz"):
		return CategoryQuiz
	case strings.Contains(s, "attend"):
		return CategoryAttendance
	case strings.Contains(s, "particip"):
		return CategoryParticipation
	default:
		return CategoryAssignment
	}
}

// weightSumTolerance bounds the allowed drift of the weight sum from 1.0.
const weightSumTolerance = 1e-6

var (
	ErrNegativeWeight = errors.New("grade weight must be non-negative")
	ErrWeightSum      = errors.New("grade weights must sum to 1.0")
)

// Weights holds the configured fraction of the overall grade each category
// carries. Setting one weight never touches the others; renormalization
// over active categories happens only at calculation time.
type Weights struct {
	Assignments   float64 `json:"assignments"`
	Quizzes       float64 `json:"quizzes"`
	Participation float64 `json:"participation"`
	Attendance    float64 `json:"attendance"`
}

// DefaultWeights is the stock 40/30/20/10 split.
func DefaultWeights() Weights {
	return Weights{Assignments: 0.4, Quizzes: 0.3, Participation: 0.2, Attendance: 0.1}
}

// Of returns the configured weight for a category.
func (w Weights) Of(c Category) float64 {
	switch c {
	case CategoryQuiz:
		return w.Quizzes
	case CategoryParticipation:
		return w.Participation
	case CategoryAttendance:
		return w.Attendance
	default:
		return w.Assignments
	}
}

// Set replaces a single category's weight, leaving the rest untouched.
func (w *Weights) Set(c Category, v float64) {
	switch c {
	case CategoryQuiz:
		w.Quizzes = v
	case CategoryParticipation:
		w.Participation = v
	case CategoryAttendance:
		w.Attendance = v
	default:
		w.Assignments = v
	}
}

// Validate checks that every weight is non-negative and the four sum to 1.0
// within tolerance.
func (w Weights) Validate() error {
	for _, c := range Categories() {
		if w.Of(c) < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeWeight, c)
		}
	}
	sum := w.Assignments + w.Quizzes + w.Participation + w.Attendance
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: got %v", ErrWeightSum, sum)
	}
	return nil
}
