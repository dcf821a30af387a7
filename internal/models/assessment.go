package models

import (
	"strings"
	"time"
)

// AssessmentState is the lifecycle position of an assessment at a given instant.
type AssessmentState string

const (
	// AssessmentStateDraft is a newly created assessment that students cannot see.
	AssessmentStateDraft AssessmentState = "draft"
	// AssessmentStatePublished is visible and open for submissions.
	AssessmentStatePublished AssessmentState = "published"
	// AssessmentStateExpired is a published assessment whose due date has passed. It is derived, never stored.
	AssessmentStateExpired AssessmentState = "expired"
)

// Assessment is a gradable unit (quiz, assignment, exam) belonging to a course.
type Assessment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	TotalMarks  float64    `gorm:"not null" json:"total_marks"`
	Type        string     `gorm:"size:64;not null" json:"type"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Course      Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// IsPastDue returns true when the assessment deadline has already passed.
func (a Assessment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// State derives the lifecycle state at the reference instant.
func (a Assessment) State(reference time.Time) AssessmentState {
	switch {
	case !a.IsPublished:
		return AssessmentStateDraft
	case a.IsPastDue(reference):
		return AssessmentStateExpired
	default:
		return AssessmentStatePublished
	}
}

// Publish moves a draft into the published state. It reports whether anything changed,
// publishing twice is a no-op.
func (a *Assessment) Publish(at time.Time) bool {
	if a.IsPublished {
		return false
	}
	a.IsPublished = true
	a.PublishedAt = &at
	return true
}

// QuestionMarks sums the weight of every question.
func (a Assessment) QuestionMarks() float64 {
	var total float64
	for _, question := range a.Questions {
		total += question.Marks
	}
	return total
}

// Choice letters accepted as answers and answer keys.
const (
	ChoiceA = "A"
	ChoiceB = "B"
	ChoiceC = "C"
	ChoiceD = "D"
)

// Question is a single-best-choice item owned by exactly one assessment.
type Question struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	AssessmentID  uint    `gorm:"not null;index" json:"assessment_id"`
	QuestionText  string  `gorm:"type:text;not null" json:"question_text"`
	OptionA       string  `gorm:"type:text;not null" json:"option_a"`
	OptionB       string  `gorm:"type:text;not null" json:"option_b"`
	OptionC       string  `gorm:"type:text;not null" json:"option_c"`
	OptionD       string  `gorm:"type:text;not null" json:"option_d"`
	CorrectAnswer string  `gorm:"size:1;not null" json:"-"`
	Marks         float64 `gorm:"not null" json:"marks"`
}

// NormalizeChoice upper-cases a submitted letter and reports whether it is one of A-D.
func NormalizeChoice(choice string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(choice))
	switch normalized {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return normalized, true
	default:
		return "", false
	}
}

// Accepts reports whether the given choice matches the answer key.
func (q Question) Accepts(choice string) bool {
	normalized, ok := NormalizeChoice(choice)
	if !ok {
		return false
	}
	key, ok := NormalizeChoice(q.CorrectAnswer)
	return ok && normalized == key
}
