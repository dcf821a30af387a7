package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

var testClock = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func fixedNow() time.Time {
	return testClock
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.CourseMaterial{},
		&models.Assessment{},
		&models.Question{},
		&models.Result{},
		&models.ResultRevision{},
		&models.ActivityLog{},
	))
	return db
}

type seed struct {
	db         *gorm.DB
	store      repository.Store
	instructor models.User
	students   []models.User
	course     models.Course
}

func newSeed(t *testing.T) seed {
	t.Helper()
	db := setupTestDB(t)

	instructor := models.User{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&instructor).Error)

	students := []models.User{
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Role: models.RoleStudent},
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Role: models.RoleStudent},
	}
	for i := range students {
		require.NoError(t, db.Create(&students[i]).Error)
	}

	course := models.Course{Title: "Computing 101", Description: "Basics", InstructorID: instructor.ID, IsActive: true}
	require.NoError(t, db.Omit("Instructor").Create(&course).Error)

	return seed{db: db, store: repository.NewStore(db), instructor: instructor, students: students, course: course}
}

// quiz stores the two-question assessment used across tests: q1 keyed A worth 3, q2 keyed B worth 2.
func (s seed) quiz(t *testing.T, published bool, due time.Time) models.Assessment {
	t.Helper()
	assessment := models.Assessment{
		CourseID:    s.course.ID,
		Title:       "Quiz",
		Description: "Warm-up",
		DueDate:     due,
		TotalMarks:  5,
		Type:        "Quiz",
		Questions: []models.Question{
			{QuestionText: "q1", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "A", Marks: 3},
			{QuestionText: "q2", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "B", Marks: 2},
		},
	}
	if published {
		assessment.Publish(testClock.Add(-time.Hour))
	}
	require.NoError(t, s.store.Assessments().Create(context.Background(), &assessment))
	return assessment
}

func (s seed) instructorActor() Actor {
	return Actor{ID: s.instructor.ID, Role: models.RoleInstructor}
}

func (s seed) studentActor(i int) Actor {
	return Actor{ID: s.students[i].ID, Role: models.RoleStudent}
}

func (s seed) countResults(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.db.Model(&models.Result{}).Count(&count).Error)
	return count
}

func answers(assessment models.Assessment, choices ...string) dto.SubmitAssessmentRequest {
	req := dto.SubmitAssessmentRequest{}
	for i, choice := range choices {
		req.Answers = append(req.Answers, dto.AnswerSubmission{
			QuestionID:     assessment.Questions[i].ID,
			SelectedAnswer: choice,
		})
	}
	return req
}

type recordingActivity struct {
	entries []ActivityEntry
}

func (r *recordingActivity) Record(_ context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.ActivityResponse{Action: entry.Action, EntityType: entry.EntityType}, nil
}

func (r *recordingActivity) actions() []string {
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type recordingPublisher struct {
	events []ResultEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event ResultEvent) error {
	p.events = append(p.events, event)
	return nil
}
