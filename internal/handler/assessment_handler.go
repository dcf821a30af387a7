package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/internal/utils"
)

// AssessmentHandler exposes the assessment lifecycle endpoints.
type AssessmentHandler struct {
	assessments service.AssessmentService
	courses     service.CourseService
	logger      zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(assessments service.AssessmentService, courses service.CourseService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		courses:     courses,
		logger:      logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	instructor := middleware.AuthOptions{Role: middleware.AuthRoleInstructor}

	router.Get("/:id", h.get)
	router.Post("", middleware.WithAuth(h.create, instructor))
	router.Put("/:id", middleware.WithAuth(h.update, instructor))
	router.Delete("/:id", middleware.WithAuth(h.delete, instructor))
	router.Put("/:id/publish", middleware.WithAuth(h.publish, instructor))
}

// ListByCourse serves GET /courses/:id/assessments.
func (h *AssessmentHandler) ListByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	if _, err := h.courses.Get(ctx, courseID); err != nil {
		return respondError(c, h.logger, err)
	}

	assessments, err := h.assessments.ListByCourse(ctx, courseID, seesDrafts(actorFromContext(c)))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assessment, err := h.assessments.Get(c.UserContext(), id, seesDrafts(actorFromContext(c)))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := actorFromContext(c)
	ctx := c.UserContext()
	if payload.CourseID != 0 {
		course, err := h.courses.Get(ctx, payload.CourseID)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		if !canManage(actor, course.InstructorID) {
			return respondError(c, h.logger, errForbidden)
		}
	}

	assessment, err := h.assessments.Create(ctx, actor, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", assessment)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssessmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := actorFromContext(c)
	if err := h.authorize(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	assessment, err := h.assessments.Update(c.UserContext(), actor, id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assessment updated", assessment)
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if err := h.authorize(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.assessments.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assessment deleted", nil)
}

func (h *AssessmentHandler) publish(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if err := h.authorize(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}

	assessment, err := h.assessments.Publish(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assessment published", assessment)
}

func (h *AssessmentHandler) authorize(ctx context.Context, actor service.Actor, assessmentID uint) error {
	owner, err := h.assessments.InstructorOf(ctx, assessmentID)
	if err != nil {
		return err
	}
	if !canManage(actor, owner) {
		return errForbidden
	}
	return nil
}
