package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/observability"
	"github.com/noah-isme/edusync-go-api/internal/repository"
	"github.com/noah-isme/edusync-go-api/pkg/cloudinary"
)

// MaterialStorage abstracts the blob store holding course materials.
type MaterialStorage interface {
	Upload(ctx context.Context, courseID uint, name string, reader io.Reader) (cloudinary.Object, error)
	Delete(ctx context.Context, key string) error
}

// MaterialService handles validation and persistence of course materials.
type MaterialService interface {
	Upload(ctx context.Context, actor Actor, courseID uint, file *multipart.FileHeader) (dto.MaterialResponse, error)
	List(ctx context.Context, courseID uint) ([]dto.MaterialResponse, error)
	OwnerOf(ctx context.Context, materialID uint) (uint, error)
	Delete(ctx context.Context, actor Actor, materialID uint) error
}

var allowedMaterialTypes = []string{
	"application/pdf",
	"application/zip",
	"text/plain",
	"image/png",
	"image/jpeg",
	"video/mp4",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

type materialService struct {
	store    repository.Store
	storage  MaterialStorage
	activity ActivityRecorder
	maxSize  int64
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewMaterialService constructs a material service. storage may be nil, uploads then fail with ErrStorageUnavailable.
func NewMaterialService(store repository.Store, storage MaterialStorage, activity ActivityRecorder, maxSizeMB int, logger zerolog.Logger) MaterialService {
	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}
	return &materialService{
		store:    store,
		storage:  storage,
		activity: activity,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/noah-isme/edusync-go-api/internal/service/material"),
		logger:   logger.With().Str("component", "material_service").Logger(),
	}
}

func (s *materialService) Upload(ctx context.Context, actor Actor, courseID uint, file *multipart.FileHeader) (dto.MaterialResponse, error) {
	ctx, span := s.tracer.Start(ctx, "material.upload")
	defer span.End()
	span.SetAttributes(attribute.Int64("material.course_id", int64(courseID)))

	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.MaterialResponse{}, err
	}
	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return dto.MaterialResponse{}, ErrStorageUnavailable
	}

	if _, err := s.store.Courses().FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MaterialResponse{}, ErrCourseNotFound
		}
		return dto.MaterialResponse{}, err
	}

	if file.Size > s.maxSize {
		observability.MaterialUploads().WithLabelValues("too_large").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.MaterialResponse{}, ErrMaterialTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.MaterialResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.MaterialResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.MaterialUploads().WithLabelValues("too_large").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.MaterialResponse{}, ErrMaterialTooLarge
	}

	contentType, ok := detectMaterialType(buf.Bytes())
	span.SetAttributes(attribute.String("material.content_type", contentType))
	if !ok {
		observability.MaterialUploads().WithLabelValues("type_rejected").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.MaterialResponse{}, fmt.Errorf("%w: %s", ErrMaterialTypeNotAllowed, contentType)
	}

	name := materialFileName(file.Filename)
	object, err := s.storage.Upload(ctx, courseID, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.MaterialUploads().WithLabelValues("storage_failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.MaterialResponse{}, err
	}

	material := models.CourseMaterial{
		CourseID:    courseID,
		FileName:    name,
		URL:         object.URL,
		ContentType: contentType,
		SizeBytes:   int64(buf.Len()),
		StorageKey:  object.Key,
		UploadedBy:  actor.ID,
	}
	if err := s.store.Materials().Create(ctx, &material); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		s.removeBlob(ctx, object.Key)
		return dto.MaterialResponse{}, err
	}

	observability.MaterialUploads().WithLabelValues("stored").Inc()
	entityID := material.ID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "material.uploaded",
		EntityType: "material",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"course_id": courseID, "content_type": contentType},
	})

	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) List(ctx context.Context, courseID uint) ([]dto.MaterialResponse, error) {
	if _, err := s.store.Courses().FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	materials, err := s.store.Materials().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MaterialResponse, 0, len(materials))
	for _, material := range materials {
		responses = append(responses, dto.NewMaterialResponse(material))
	}
	return responses, nil
}

// OwnerOf returns the instructor of the course the material belongs to.
func (s *materialService) OwnerOf(ctx context.Context, materialID uint) (uint, error) {
	material, err := s.store.Materials().GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrMaterialNotFound
		}
		return 0, err
	}
	return material.Course.InstructorID, nil
}

func (s *materialService) Delete(ctx context.Context, actor Actor, materialID uint) error {
	material, err := s.store.Materials().GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}

	if err := s.store.Materials().Delete(ctx, materialID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return err
	}

	s.removeBlob(ctx, material.StorageKey)
	entityID := material.ID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "material.deleted",
		EntityType: "material",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"course_id": material.CourseID},
	})
	return nil
}

func (s *materialService) removeBlob(ctx context.Context, key string) {
	if s.storage == nil || key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to remove material blob")
	}
}

func detectMaterialType(payload []byte) (string, bool) {
	detected := mimetype.Detect(payload)
	for _, allowed := range allowedMaterialTypes {
		if detected.Is(allowed) {
			return allowed, true
		}
	}
	return detected.String(), false
}

func materialFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return fmt.Sprintf("material-%d.bin", time.Now().Unix())
	}
	return base
}
