package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAssessmentNotFound indicates the assessment does not exist.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrResultNotFound indicates the result does not exist.
	ErrResultNotFound = errors.New("result not found")
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrMaterialNotFound indicates the course material does not exist.
	ErrMaterialNotFound = errors.New("material not found")
	// ErrEnrollmentNotFound indicates the student is not enrolled in the course.
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// ErrNotPublished rejects submissions against a draft assessment.
	ErrNotPublished = errors.New("assessment is not published")
	// ErrDeadlinePassed rejects submissions after the due date.
	ErrDeadlinePassed = errors.New("assessment deadline has passed")
	// ErrUnknownStudent indicates the submitting student is not in the user directory.
	ErrUnknownStudent = errors.New("student not found")
	// ErrUnknownQuestion indicates an answer references a question outside the assessment.
	ErrUnknownQuestion = errors.New("answer references an unknown question")
	// ErrInvalidMarks indicates marks fall outside [0, total marks].
	ErrInvalidMarks = errors.New("marks out of range")

	// ErrConflictingState indicates the operation conflicts with the stored state.
	ErrConflictingState = errors.New("operation conflicts with current state")
	// ErrAlreadySubmitted indicates the student already holds a result for the assessment.
	ErrAlreadySubmitted = fmt.Errorf("%w: assessment already submitted", ErrConflictingState)
	// ErrAlreadyEnrolled indicates the student is already enrolled in the course.
	ErrAlreadyEnrolled = fmt.Errorf("%w: already enrolled", ErrConflictingState)

	// ErrMaterialTypeNotAllowed indicates the uploaded file type is not accepted.
	ErrMaterialTypeNotAllowed = errors.New("material type not allowed")
	// ErrMaterialTooLarge indicates the uploaded file exceeds the size limit.
	ErrMaterialTooLarge = errors.New("material exceeds maximum allowed size")
	// ErrStorageUnavailable indicates no blob store is configured.
	ErrStorageUnavailable = errors.New("material storage is not configured")
	// ErrFeedbackUnavailable indicates no feedback generator is configured.
	ErrFeedbackUnavailable = errors.New("feedback assistant is not configured")
)
