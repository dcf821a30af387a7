package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that take part in a unit of work.
type Store interface {
	Assessments() AssessmentRepository
	Results() ResultRepository
	Users() UserRepository
	Courses() CourseRepository
	Enrollments() EnrollmentRepository
	Materials() MaterialRepository
	// Transaction runs fn against a Store bound to a single database transaction.
	// Returning an error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore constructs a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Assessments() AssessmentRepository { return NewAssessmentRepository(s.db) }
func (s *gormStore) Results() ResultRepository         { return NewResultRepository(s.db) }
func (s *gormStore) Users() UserRepository             { return NewUserRepository(s.db) }
func (s *gormStore) Courses() CourseRepository         { return NewCourseRepository(s.db) }
func (s *gormStore) Enrollments() EnrollmentRepository { return NewEnrollmentRepository(s.db) }
func (s *gormStore) Materials() MaterialRepository     { return NewMaterialRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
