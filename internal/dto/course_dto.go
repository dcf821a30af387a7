package dto

import (
	"time"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"required"`
	Duration    string `json:"duration" validate:"omitempty,max=64"`
	Level       string `json:"level" validate:"omitempty,max=64"`
}

// CourseResponse is the course read shape.
type CourseResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	InstructorID   uint      `json:"instructor_id"`
	InstructorName string    `json:"instructor_name,omitempty"`
	Duration       string    `json:"duration"`
	Level          string    `json:"level"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCourseResponse converts a course model.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		InstructorID: model.InstructorID,
		Duration:     model.Duration,
		Level:        model.Level,
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
	}
	if model.Instructor.ID != 0 {
		response.InstructorName = model.Instructor.DisplayName()
	}
	return response
}

// NewCourseResponseSlice converts course models.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}

// MaterialResponse describes an uploaded course material.
type MaterialResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	FileName    string    `json:"file_name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  uint      `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMaterialResponse converts a material model.
func NewMaterialResponse(model models.CourseMaterial) MaterialResponse {
	return MaterialResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		FileName:    model.FileName,
		URL:         model.URL,
		ContentType: model.ContentType,
		SizeBytes:   model.SizeBytes,
		UploadedBy:  model.UploadedBy,
		CreatedAt:   model.CreatedAt,
	}
}

// EnrollmentStatusResponse answers whether a student is enrolled in a course.
type EnrollmentStatusResponse struct {
	CourseID uint `json:"course_id"`
	Enrolled bool `json:"enrolled"`
}

// EnrollmentResponse is returned after enrolling.
type EnrollmentResponse struct {
	ID         uint      `json:"id"`
	StudentID  uint      `json:"student_id"`
	CourseID   uint      `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Status     string    `json:"status"`
	IsActive   bool      `json:"is_active"`
}

// NewEnrollmentResponse converts an enrollment model.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		CourseID:   model.CourseID,
		EnrolledAt: model.EnrolledAt,
		Status:     model.Status,
		IsActive:   model.IsActive,
	}
}
