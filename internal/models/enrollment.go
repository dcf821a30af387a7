package models

import "time"

const (
	// EnrollmentStatusActive is a running enrollment.
	EnrollmentStatusActive = "Active"
	// EnrollmentStatusCompleted is a finished course.
	EnrollmentStatusCompleted = "Completed"
	// EnrollmentStatusDropped is a withdrawn enrollment.
	EnrollmentStatusDropped = "Dropped"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"student_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollments_student_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
