package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Object describes an asset stored in Cloudinary.
type Object struct {
	URL string
	// Key identifies the asset for later removal, formatted as "<resource type>:<public id>".
	Key string
}

// MaterialStore keeps course materials in Cloudinary.
type MaterialStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Cloudinary backed material store.
func New(cfg Config, logger zerolog.Logger) (*MaterialStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &MaterialStore{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
		now:    time.Now,
	}, nil
}

// Upload stores the file under "<folder>/course-<id>" and returns its secure URL and key.
func (s *MaterialStore) Upload(ctx context.Context, courseID uint, name string, reader io.Reader) (Object, error) {
	params := uploader.UploadParams{
		Folder:       CourseFolder(s.folder, courseID),
		PublicID:     PublicID(name, s.now()),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload material: %w", err)
	}
	if result.Error.Message != "" {
		return Object{}, fmt.Errorf("cloudinary rejected material: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Uint("course_id", courseID).Msg("material uploaded")

	return Object{
		URL: result.SecureURL,
		Key: result.ResourceType + ":" + result.PublicID,
	}, nil
}

// Delete removes a previously uploaded asset.
func (s *MaterialStore) Delete(ctx context.Context, key string) error {
	resourceType, publicID, ok := strings.Cut(key, ":")
	if !ok || publicID == "" {
		return fmt.Errorf("invalid material key %q", key)
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", publicID).Str("result", result.Result).Msg("material deleted")
	return nil
}

// CourseFolder returns the folder holding a course's materials.
func CourseFolder(base string, courseID uint) string {
	folder := fmt.Sprintf("course-%d", courseID)
	if base == "" {
		return folder
	}
	return base + "/" + folder
}

// PublicID derives a URL-safe public id from the file name and upload time.
func PublicID(name string, at time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "material"
	}

	return fmt.Sprintf("%s-%d", base, at.Unix())
}
