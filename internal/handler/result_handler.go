package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/internal/utils"
)

// ResultHandler exposes submission, review and grading endpoints.
type ResultHandler struct {
	results     service.ResultService
	assessments service.AssessmentService
	feedback    service.FeedbackService
	logger      zerolog.Logger
}

// NewResultHandler builds a result handler instance. feedback may be nil.
func NewResultHandler(results service.ResultService, assessments service.AssessmentService, feedback service.FeedbackService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		results:     results,
		assessments: assessments,
		feedback:    feedback,
		logger:      logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register attaches the routes. submitGuards run before the submission handler, typically a rate limiter.
func (h *ResultHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	instructor := middleware.AuthOptions{Role: middleware.AuthRoleInstructor}

	submit := append([]fiber.Handler{}, submitGuards...)
	submit = append(submit, middleware.WithAuth(h.submit, student))

	router.Post("/assessments/:id/submit", submit...)
	router.Get("/assessments/:id", middleware.WithAuth(h.listByAssessment, instructor))
	router.Get("/student", middleware.WithAuth(h.listByStudent, student))
	router.Get("/:id", middleware.WithAuth(h.get, middleware.AuthOptions{RequireUser: true}))
	router.Post("/:id/grade", middleware.WithAuth(h.grade, instructor))
	router.Post("/:id/feedback/suggestions", middleware.WithAuth(h.suggestFeedback, instructor))
	router.Delete("/:id", middleware.WithAuth(h.delete, instructor))
}

func (h *ResultHandler) submit(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.results.Submit(c.UserContext(), actorFromContext(c), assessmentID, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment submitted", result)
}

func (h *ResultHandler) listByAssessment(c *fiber.Ctx) error {
	assessmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.authorizeAssessment(c.UserContext(), actorFromContext(c), assessmentID); err != nil {
		return respondError(c, h.logger, err)
	}

	results, err := h.results.ListByAssessment(c.UserContext(), assessmentID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultHandler) listByStudent(c *fiber.Ctx) error {
	results, err := h.results.ListByStudent(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *ResultHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.results.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	actor := actorFromContext(c)
	if actor.Role == models.RoleStudent && result.StudentID != actor.ID {
		return respondError(c, h.logger, errForbidden)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *ResultHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeResultRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := actorFromContext(c)
	if err := h.authorizeResult(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.results.OverrideGrade(c.UserContext(), actor, id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "result graded", result)
}

func (h *ResultHandler) suggestFeedback(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if h.feedback == nil {
		return respondError(c, h.logger, service.ErrFeedbackUnavailable)
	}

	if err := h.authorizeResult(c.UserContext(), actorFromContext(c), id); err != nil {
		return respondError(c, h.logger, err)
	}

	suggestion, err := h.feedback.Suggest(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "feedback drafted", suggestion)
}

func (h *ResultHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if err := h.authorizeResult(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.results.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "result deleted", nil)
}

func (h *ResultHandler) authorizeResult(ctx context.Context, actor service.Actor, resultID uint) error {
	result, err := h.results.Get(ctx, resultID)
	if err != nil {
		return err
	}
	return h.authorizeAssessment(ctx, actor, result.AssessmentID)
}

func (h *ResultHandler) authorizeAssessment(ctx context.Context, actor service.Actor, assessmentID uint) error {
	owner, err := h.assessments.InstructorOf(ctx, assessmentID)
	if err != nil {
		return err
	}
	if !canManage(actor, owner) {
		return errForbidden
	}
	return nil
}
