package grading

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvolkova/classkeeper/internal/models"
)

func rec(raw string, score, max float64, gradedAt time.Time) models.AssignmentGrade {
	return models.AssignmentGrade{ID: uuid.New(), RawType: raw, Score: score, MaxScore: max, GradedAt: gradedAt}
}

func TestCourseGradeFor_RenormalizesToActiveCategories(t *testing.T) {
	courseID := uuid.New()
	now := time.Now()
	grades := []models.Grade{{
		ID:       uuid.New(),
		CourseID: courseID,
		Records: []models.AssignmentGrade{
			rec("Homework", 90, 100, now),
			rec("Homework", 85, 100, now.Add(time.Hour)),
		},
	}}

	got := CourseGradeFor(grades, DefaultWeights(), courseID, "Algebra")

	// only the assignment category has data, so it carries the full weight
	assert.InDelta(t, 87.5, got.Overall, 1e-9)
	assert.Equal(t, "B+", got.Letter)
	assert.InDelta(t, 3.3, got.Points, 1e-9)
	require.Len(t, got.Breakdown, 4)

	active := 0
	for _, b := range got.Breakdown {
		if b.Active {
			active++
			assert.Equal(t, CategoryAssignment, b.Category)
			assert.InDelta(t, 87.5, b.Percentage, 1e-9)
		} else {
			assert.Zero(t, b.Percentage)
			assert.Zero(t, b.Possible)
		}
	}
	assert.Equal(t, 1, active)
}

func TestCourseGradeFor_MultipleCategories(t *testing.T) {
	courseID := uuid.New()
	now := time.Now()
	grades := []models.Grade{{
		ID:       uuid.New(),
		CourseID: courseID,
		Records: []models.AssignmentGrade{
			rec("Homework", 80, 100, now),
			rec("Quiz", 100, 100, now),
		},
	}}

	w := Weights{Assignments: 0.5, Quizzes: 0.5}
	got := CourseGradeFor(grades, w, courseID, "Biology")

	// 80*0.5 + 100*0.5 over weight 1.0
	assert.InDelta(t, 90.0, got.Overall, 1e-9)
	assert.Equal(t, "A-", got.Letter)
}

func TestCourseGradeFor_ZeroMaxScoreIsInert(t *testing.T) {
	courseID := uuid.New()
	grades := []models.Grade{{
		ID:       uuid.New(),
		CourseID: courseID,
		Records:  []models.AssignmentGrade{rec("Homework", 5, 0, time.Now())},
	}}

	got := CourseGradeFor(grades, DefaultWeights(), courseID, "Art")

	assert.Zero(t, got.Overall)
	assert.Equal(t, "F", got.Letter)
	require.Len(t, got.Breakdown, 4)
	for _, b := range got.Breakdown {
		assert.False(t, b.Active)
	}
}

func TestCourseGradeFor_IgnoresOtherCourses(t *testing.T) {
	courseID := uuid.New()
	now := time.Now()
	grades := []models.Grade{
		{ID: uuid.New(), CourseID: courseID, Records: []models.AssignmentGrade{rec("Homework", 100, 100, now)}},
		{ID: uuid.New(), CourseID: uuid.New(), Records: []models.AssignmentGrade{rec("Homework", 0, 100, now)}},
	}

	got := CourseGradeFor(grades, DefaultWeights(), courseID, "History")
	assert.InDelta(t, 100.0, got.Overall, 1e-9)
}

func TestTrendOf(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seq := func(ratios ...float64) []models.AssignmentGrade {
		out := make([]models.AssignmentGrade, len(ratios))
		for i, r := range ratios {
			out[i] = rec("Homework", r*100, 100, base.Add(time.Duration(i)*24*time.Hour))
		}
		return out
	}

	t.Run("below minimum is stable", func(t *testing.T) {
		assert.Equal(t, TrendStable, TrendOf(seq(0.5, 1.0), 4))
	})

	t.Run("improving", func(t *testing.T) {
		assert.Equal(t, TrendImproving, TrendOf(seq(0.6, 0.65, 0.85, 0.9), 4))
	})

	t.Run("declining", func(t *testing.T) {
		assert.Equal(t, TrendDeclining, TrendOf(seq(0.9, 0.85, 0.65, 0.6), 4))
	})

	t.Run("flat within tolerance", func(t *testing.T) {
		assert.Equal(t, TrendStable, TrendOf(seq(0.8, 0.81, 0.8, 0.81), 4))
	})

	t.Run("order comes from timestamps not input order", func(t *testing.T) {
		records := seq(0.6, 0.65, 0.85, 0.9)
		records[0], records[3] = records[3], records[0]
		assert.Equal(t, TrendImproving, TrendOf(records, 4))
	})

	t.Run("zero max scores are ignored", func(t *testing.T) {
		records := append(seq(0.6, 0.65, 0.85, 0.9), rec("Homework", 3, 0, base.Add(100*24*time.Hour)))
		assert.Equal(t, TrendImproving, TrendOf(records, 4))
	})
}
