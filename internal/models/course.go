package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is a class the student is enrolled in.
type Course struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Code    string    `json:"code"`
	Teacher string    `json:"teacher"`
	Room    string    `json:"room"`
	Period  int       `json:"period"`
}

// Assignment is a piece of coursework with an optional due date.
type Assignment struct {
	ID          uuid.UUID  `json:"id"`
	CourseID    uuid.UUID  `json:"course_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at,omitempty"`

	// Submitted is set once the work has been turned in server-side.
	Submitted bool `json:"submitted"`

	// InProgress marks a submission being composed locally and not yet
	// sent. In-progress work resolves local-wins during sync.
	InProgress bool `json:"in_progress"`
}

// AssignmentGrade is one scored record. RawType is the free-text category
// string as the backend reports it ("Quiz", "homework", "Class
// Participation", ...); classification happens in the grading package.
type AssignmentGrade struct {
	ID       uuid.UUID `json:"id"`
	RawType  string    `json:"raw_type"`
	Score    float64   `json:"score"`
	MaxScore float64   `json:"max_score"`
	GradedAt time.Time `json:"graded_at"`
}

// Grade groups the scored records of one student in one course.
type Grade struct {
	ID       uuid.UUID         `json:"id"`
	CourseID uuid.UUID         `json:"course_id"`
	Records  []AssignmentGrade `json:"records"`
}

// Profile is the student's own account record.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email"`
	GradeLevel     int       `json:"grade_level"`
	ConsentGranted bool      `json:"consent_granted"`
}
