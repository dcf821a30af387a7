package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/internal/utils"
)

// CourseHandler serves the course directory and course materials.
type CourseHandler struct {
	courses   service.CourseService
	materials service.MaterialService
	logger    zerolog.Logger
}

// NewCourseHandler builds a course handler instance.
func NewCourseHandler(courses service.CourseService, materials service.MaterialService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:   courses,
		materials: materials,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the course routes to the provided router group.
func (h *CourseHandler) Register(router fiber.Router) {
	instructor := middleware.AuthOptions{Role: middleware.AuthRoleInstructor}

	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, instructor))
	router.Get("/:id", h.get)
	router.Get("/:id/materials", h.listMaterials)
	router.Post("/:id/materials", middleware.WithAuth(h.uploadMaterial, instructor))
}

// RegisterMaterials attaches the material routes that are not nested under a course.
func (h *CourseHandler) RegisterMaterials(router fiber.Router) {
	router.Delete("/:id", middleware.WithAuth(h.deleteMaterial, middleware.AuthOptions{Role: middleware.AuthRoleInstructor}))
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.courses.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) listMaterials(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	materials, err := h.materials.List(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "materials retrieved", materials)
}

func (h *CourseHandler) uploadMaterial(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !canManage(actor, course.InstructorID) {
		return respondError(c, h.logger, errForbidden)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	material, err := h.materials.Upload(c.UserContext(), actor, id, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "material uploaded", material)
}

func (h *CourseHandler) deleteMaterial(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	owner, err := h.materials.OwnerOf(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !canManage(actor, owner) {
		return respondError(c, h.logger, errForbidden)
	}

	if err := h.materials.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "material deleted", nil)
}
