package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/database/dbtest"
	"github.com/wtppaul/course-marketplace/internal/models"
)

type repos struct {
	db         *gorm.DB
	courses    ICourseRepository
	content    IContentRepository
	enrollment IEnrollmentRepository
	progress   IProgressRepository
	payments   IPaymentRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	db := dbtest.Open(t)
	return repos{
		db:         db,
		courses:    NewCourseRepository(db),
		content:    NewContentRepository(db),
		enrollment: NewEnrollmentRepository(db),
		progress:   NewProgressRepository(db),
		payments:   NewPaymentRepository(db),
	}
}

func strPtr(s string) *string { return &s }

func (r repos) seedCourse(t *testing.T) *models.Course {
	t.Helper()
	instructor, err := r.courses.FindOrCreateUserByAuthID(context.Background(), "auth-"+uuid.NewString())
	require.NoError(t, err)

	course := &models.Course{
		Title:        "Go in Practice",
		Slug:         "go-in-practice-" + uuid.NewString()[:8],
		InstructorID: instructor.ID,
	}
	require.NoError(t, r.courses.CreateCourse(context.Background(), course))
	return course
}

func (r repos) seedArticle(t *testing.T, moduleID uuid.UUID, title string, published bool) *models.Article {
	t.Helper()
	ctx := context.Background()
	a, err := r.content.CreateArticle(ctx, moduleID, title)
	require.NoError(t, err)
	if published {
		_, err = r.content.UpdateArticle(ctx, a.ID, ArticlePatch{Content: strPtr("body")})
		require.NoError(t, err)
		require.NoError(t, r.content.SetArticlePublished(ctx, a.ID, true))
	}
	return a
}
