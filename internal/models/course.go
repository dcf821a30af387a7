package models

import "time"

// Course groups assessments and materials under one instructor.
type Course struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	InstructorID uint      `gorm:"not null;index" json:"instructor_id"`
	Duration     string    `gorm:"size:64" json:"duration"`
	Level        string    `gorm:"size:64" json:"level"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Instructor   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// CourseMaterial is a file attached to a course and kept in the blob store.
type CourseMaterial struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	URL         string    `gorm:"size:512;not null" json:"url"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `gorm:"size:255" json:"-"`
	UploadedBy  uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
