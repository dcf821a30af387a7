package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/internal/utils"
)

// EnrollmentHandler lets students join and leave courses. Routes expect a student guard on the group.
type EnrollmentHandler struct {
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewEnrollmentHandler builds an enrollment handler instance.
func NewEnrollmentHandler(enrollments service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		logger:      logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/courses/:courseId", h.enroll)
	router.Get("/courses/:courseId", h.status)
	router.Delete("/courses/:courseId", h.unenroll)
}

func (h *EnrollmentHandler) list(c *fiber.Ctx) error {
	courses, err := h.enrollments.ListCourses(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrolled courses retrieved", courses)
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), userIDFromContext(c), courseID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *EnrollmentHandler) status(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrolled, err := h.enrollments.IsEnrolled(c.UserContext(), userIDFromContext(c), courseID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "enrollment status", dto.EnrollmentStatusResponse{CourseID: courseID, Enrolled: enrolled})
}

func (h *EnrollmentHandler) unenroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.enrollments.Unenroll(c.UserContext(), userIDFromContext(c), courseID); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "unenrolled", nil)
}
