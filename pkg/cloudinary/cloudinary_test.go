package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicIDSanitisesName(t *testing.T) {
	at := time.Unix(1700000000, 0)
	require.Equal(t, "Week-1-notes-1700000000", PublicID("Week 1 notes.pdf", at))
	require.Equal(t, "material-1700000000", PublicID("../.pdf", at))
}

func TestCourseFolder(t *testing.T) {
	require.Equal(t, "edusync/materials/course-7", CourseFolder("edusync/materials", 7))
	require.Equal(t, "course-7", CourseFolder("", 7))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}
