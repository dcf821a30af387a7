package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// ResultStatusSubmitted indicates the attempt was recorded but not yet scored.
	ResultStatusSubmitted = "Submitted"
	// ResultStatusGraded indicates the attempt carries a final score.
	ResultStatusGraded = "Graded"
	// ResultStatusLate marks an attempt accepted after the deadline.
	ResultStatusLate = "Late"
)

// Result is one student's graded attempt at an assessment.
type Result struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	AssessmentID   uint             `gorm:"not null;uniqueIndex:idx_results_assessment_student" json:"assessment_id"`
	StudentID      uint             `gorm:"not null;uniqueIndex:idx_results_assessment_student;index" json:"student_id"`
	MarksObtained  float64          `gorm:"not null" json:"marks_obtained"`
	Status         string           `gorm:"size:16;not null" json:"status"`
	Feedback       string           `gorm:"type:text" json:"feedback"`
	Answers        datatypes.JSON   `json:"answers"`
	SubmissionDate time.Time        `gorm:"not null" json:"submission_date"`
	GradedAt       *time.Time       `json:"graded_at"`
	GradedBy       *uint            `json:"graded_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Assessment     Assessment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Student        User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Revisions      []ResultRevision `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"revisions"`
}

// IsGraded reports whether the result has a final score.
func (r Result) IsGraded() bool {
	return r.Status == ResultStatusGraded
}

// ResultRevision keeps the trail of instructor overrides applied to a result.
type ResultRevision struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ResultID      uint      `gorm:"not null;index" json:"result_id"`
	PreviousMarks float64   `gorm:"not null" json:"previous_marks"`
	Marks         float64   `gorm:"not null" json:"marks"`
	Feedback      string    `gorm:"type:text" json:"feedback"`
	GradedBy      uint      `gorm:"not null" json:"graded_by"`
	GradedAt      time.Time `gorm:"not null" json:"graded_at"`
}
