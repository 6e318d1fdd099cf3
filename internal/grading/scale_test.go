package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterGrade_Breakpoints(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{105, "A+"}, // extra credit
		{97, "A+"},
		{96.99, "A"},
		{93, "A"},
		{92.99, "A-"},
		{90, "A-"},
		{89.99, "B+"},
		{87, "B+"},
		{86.99, "B"},
		{83, "B"},
		{82.99, "B-"},
		{80, "B-"},
		{79.99, "C+"},
		{77, "C+"},
		{76.99, "C"},
		{73, "C"},
		{72.99, "C-"},
		{70, "C-"},
		{69.99, "D+"},
		{67, "D+"},
		{66.99, "D"},
		{63, "D"},
		{62.99, "D-"},
		{60, "D-"},
		{59.9, "F"},
		{0, "F"},
		{-5, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LetterGrade(tt.pct), "pct=%v", tt.pct)
	}
}

func TestGradePoints_Scale(t *testing.T) {
	tests := []struct {
		pct  float64
		want float64
	}{
		{110, 4.0},
		{97, 4.0},
		{93, 4.0},
		{90, 3.7},
		{87, 3.3},
		{83, 3.0},
		{80, 2.7},
		{77, 2.3},
		{73, 2.0},
		{70, 1.7},
		{67, 1.3},
		{63, 1.0},
		{60, 0.7},
		{59, 0.0},
		{-10, 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, GradePoints(tt.pct), 1e-9, "pct=%v", tt.pct)
	}
}

func TestGradeColor_Bands(t *testing.T) {
	assert.Equal(t, ColorGreen, GradeColor(95))
	assert.Equal(t, ColorGreen, GradeColor(90))
	assert.Equal(t, ColorBlue, GradeColor(89.9))
	assert.Equal(t, ColorYellow, GradeColor(75))
	assert.Equal(t, ColorOrange, GradeColor(60))
	assert.Equal(t, ColorRed, GradeColor(59.9))
}

func TestGPA(t *testing.T) {
	assert.Zero(t, GPA(nil))

	results := []CourseGrade{{Points: 4.0}, {Points: 3.0}, {Points: 2.0}}
	assert.InDelta(t, 3.0, GPA(results), 1e-9)
}

func TestPercentageNeeded(t *testing.T) {
	// infeasible: would need 135/50
	_, ok := PercentageNeeded(0, 100, 50, 90)
	require.False(t, ok)

	// no points remain
	_, ok = PercentageNeeded(50, 100, 0, 60)
	require.False(t, ok)

	// already meeting target
	got, ok := PercentageNeeded(90, 100, 100, 45)
	require.True(t, ok)
	assert.Zero(t, got)

	// plain case: 80% target with 90/100 earned and 100 remaining
	got, ok = PercentageNeeded(90, 100, 100, 80)
	require.True(t, ok)
	assert.InDelta(t, 70.0, got, 1e-9)
}

func TestCategorize_SubstringContract(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"Quiz", CategoryQuiz},
		{"pop quiz 3", CategoryQuiz},
		{"Attendance", CategoryAttendance},
		{"weekly attend check", CategoryAttendance},
		{"Class Participation", CategoryParticipation},
		{"particip.", CategoryParticipation},
		{"Homework", CategoryAssignment},
		{"Essay", CategoryAssignment},
		{"", CategoryAssignment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.raw), "raw=%q", tt.raw)
	}
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	w := Weights{Assignments: 0.5, Quizzes: 0.5}
	require.NoError(t, w.Validate())

	w.Set(CategoryQuiz, 0.6)
	err := w.Validate()
	require.ErrorIs(t, err, ErrWeightSum)
	// setting one weight must not touch the others
	assert.InDelta(t, 0.5, w.Assignments, 1e-9)

	w = Weights{Assignments: -0.1, Quizzes: 1.1}
	require.ErrorIs(t, w.Validate(), ErrNegativeWeight)
}
