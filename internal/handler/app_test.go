package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/config"
	"github.com/noah-isme/edusync-go-api/internal/database"
	"github.com/noah-isme/edusync-go-api/internal/handler"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
	"github.com/noah-isme/edusync-go-api/internal/router"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/pkg/cloudinary"
)

const (
	testSecret    = "handler-secret"
	testSeedToken = "bootstrap"
)

type memoryStorage struct {
	objects map[string]int
}

func (m *memoryStorage) Upload(_ context.Context, courseID uint, name string, reader io.Reader) (cloudinary.Object, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return cloudinary.Object{}, err
	}
	key := fmt.Sprintf("raw:course-%d/%s", courseID, name)
	m.objects[key] = len(payload)
	return cloudinary.Object{URL: "https://cdn.test/" + name, Key: key}, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	storage    *memoryStorage
	instructor models.User
	otherTutor models.User
	students   []models.User
	admin      models.User
	course     models.Course
}

type options struct {
	submitLimit int
}

func newTestEnv(t *testing.T, opts options) testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	env := testEnv{db: db, storage: &memoryStorage{objects: map[string]int{}}}
	env.instructor = createUser(t, db, "Grace", "Hopper", models.RoleInstructor)
	env.otherTutor = createUser(t, db, "Edsger", "Dijkstra", models.RoleInstructor)
	env.students = []models.User{
		createUser(t, db, "Alan", "Turing", models.RoleStudent),
		createUser(t, db, "Ada", "Lovelace", models.RoleStudent),
	}
	env.admin = createUser(t, db, "Root", "Admin", models.RoleAdmin)

	env.course = models.Course{Title: "Computing 101", Description: "Basics", InstructorID: env.instructor.ID, IsActive: true}
	require.NoError(t, db.Omit("Instructor").Create(&env.course).Error)

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	courses := service.NewCourseService(store, validate, activity, logger)
	assessments := service.NewAssessmentService(store, validate, nil, activity, logger)
	results := service.NewResultService(store, validate, nil, time.Minute, nil, activity, logger)
	enrollments := service.NewEnrollmentService(store, logger)
	materials := service.NewMaterialService(store, env.storage, activity, 2, logger)
	feedback := service.NewFeedbackService(store, nil, logger)
	seeder := service.NewSeedService(store.Users(), validate, true, testSeedToken, logger)

	cfg := config.Config{AppName: "EduSync Test", AppEnv: "test", JWTSecret: testSecret, DatabaseDriver: "sqlite"}
	deps := router.Dependencies{
		CourseHandler:        handler.NewCourseHandler(courses, materials, logger),
		AssessmentHandler:    handler.NewAssessmentHandler(assessments, courses, logger),
		ResultHandler:        handler.NewResultHandler(results, assessments, feedback, logger),
		EnrollmentHandler:    handler.NewEnrollmentHandler(enrollments, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activity, logger),
		SeedHandler:          handler.NewSeedHandler(seeder, logger),
	}
	if opts.submitLimit > 0 {
		deps.SubmitRateLimiter = middleware.RateLimit("submit", opts.submitLimit, time.Minute)
	}

	env.app = fiber.New()
	middleware.Register(env.app, middleware.Config{Logger: &logger})
	router.Register(env.app, cfg, deps)

	return env
}

func createUser(t *testing.T, db *gorm.DB, first, last, role string) models.User {
	t.Helper()
	user := models.User{
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(first) + "@example.com",
		Role:      role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.SignToken(testSecret, user.ID, user.Role, time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func (e testEnv) do(t *testing.T, method, path string, user *models.User, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, *user))
	}
	return e.send(t, req)
}

func (e testEnv) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func quizPayload(courseID uint) map[string]interface{} {
	return map[string]interface{}{
		"title":       "Warm-up quiz",
		"description": "First week",
		"course_id":   courseID,
		"due_date":    time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"total_marks": 5,
		"type":        "Quiz",
		"questions": []map[string]interface{}{
			{"question_text": "q1", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_answer": "A", "marks": 3},
			{"question_text": "q2", "option_a": "a", "option_b": "b", "option_c": "c", "option_d": "d", "correct_answer": "B", "marks": 2},
		},
	}
}

type assessmentBody struct {
	ID          uint   `json:"id"`
	State       string `json:"state"`
	IsPublished bool   `json:"is_published"`
	Questions   []struct {
		ID uint `json:"id"`
	} `json:"questions"`
}

type resultBody struct {
	ID            uint    `json:"id"`
	StudentID     uint    `json:"student_id"`
	MarksObtained float64 `json:"marks_obtained"`
	Status        string  `json:"status"`
	GradedAt      *string `json:"graded_at"`
	StudentName   string  `json:"student_name"`
}

// publishedQuiz creates and publishes the two-question quiz through the API.
func (e testEnv) publishedQuiz(t *testing.T) assessmentBody {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/v1/assessments", &e.instructor, quizPayload(e.course.ID))
	require.Equal(t, http.StatusCreated, status, body.Message)

	var created assessmentBody
	decodeData(t, body, &created)

	status, body = e.do(t, http.MethodPut, fmt.Sprintf("/api/v1/assessments/%d/publish", created.ID), &e.instructor, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	var published assessmentBody
	decodeData(t, body, &published)
	return published
}

func submission(quiz assessmentBody, choices ...string) map[string]interface{} {
	answers := make([]map[string]interface{}, 0, len(choices))
	for i, choice := range choices {
		answers = append(answers, map[string]interface{}{"question_id": quiz.Questions[i].ID, "selected_answer": choice})
	}
	return map[string]interface{}{"answers": answers}
}

func multipartRequest(t *testing.T, path, filename string, content []byte, user models.User) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	return req
}
