package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/database/dbtest"
	"github.com/wtppaul/course-marketplace/internal/gateway"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	args := m.Called(ctx, req)
	if o := args.Get(0); o != nil {
		return o.(*gateway.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) KeyID() string { return "rzp_test_key" }

type env struct {
	db         *gorm.DB
	courses    repository.ICourseRepository
	content    repository.IContentRepository
	progress   repository.IProgressRepository
	enrollment repository.IEnrollmentRepository
	payments   repository.IPaymentRepository

	publishing PublishingService
	contentSvc ContentService
	progressSv ProgressService
	enrollSvc  EnrollmentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	log := logger.Nop()
	e := &env{
		db:         db,
		courses:    repository.NewCourseRepository(db),
		content:    repository.NewContentRepository(db),
		progress:   repository.NewProgressRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		payments:   repository.NewPaymentRepository(db),
	}
	e.publishing = NewPublishingService(e.courses, e.content, log)
	e.contentSvc = NewContentService(e.courses, e.content, e.publishing, log)
	e.progressSv = NewProgressService(e.courses, e.content, e.progress, e.enrollment, log)
	e.enrollSvc = NewEnrollmentService(e.courses, e.content, e.enrollment, log)
	return e
}

func strPtr(s string) *string { return &s }

func (e *env) user(t *testing.T) *models.User {
	t.Helper()
	u, err := e.courses.FindOrCreateUserByAuthID(context.Background(), "auth-"+uuid.NewString())
	require.NoError(t, err)
	return u
}

// draftCourse creates a course with every required field except a
// published article.
func (e *env) draftCourse(t *testing.T, instructor *models.User) *models.Course {
	t.Helper()
	ctx := context.Background()
	course, err := e.contentSvc.CreateCourse(ctx, instructor.ID, "Go in Practice")
	require.NoError(t, err)

	category := &models.Category{Name: "Programming " + uuid.NewString()[:6], Slug: "programming-" + uuid.NewString()[:6]}
	require.NoError(t, e.db.Create(category).Error)

	price := 100.0
	_, err = e.contentSvc.UpdateCourse(ctx, course.ID, repository.CoursePatch{
		Description: strPtr("Learn Go by building services"),
		Price:       &price,
		CategoryID:  &category.ID,
	})
	require.NoError(t, err)
	_, err = e.contentSvc.SetCoverImage(ctx, course.ID, AttachmentInput{Name: "cover.png", URL: "https://cdn.example.com/cover.png"})
	require.NoError(t, err)
	return course
}

func (e *env) article(t *testing.T, moduleID uuid.UUID, title string, publish bool) *models.Article {
	t.Helper()
	ctx := context.Background()
	a, err := e.contentSvc.CreateArticle(ctx, moduleID, title)
	require.NoError(t, err)
	a, err = e.contentSvc.UpdateArticle(ctx, a.ID, repository.ArticlePatch{Content: strPtr("body of " + title)})
	require.NoError(t, err)
	if publish {
		res, err := e.publishing.PublishArticle(ctx, a.ID)
		require.NoError(t, err)
		require.True(t, res.Published)
		a.IsPublished = true
	}
	return a
}

// publishedCourse returns a live course with one module holding one
// published article.
func (e *env) publishedCourse(t *testing.T, instructor *models.User) (*models.Course, *models.Module, *models.Article) {
	t.Helper()
	ctx := context.Background()
	course := e.draftCourse(t, instructor)
	m, err := e.contentSvc.CreateModule(ctx, course.ID, "Basics")
	require.NoError(t, err)
	a := e.article(t, m.ID, "Hello", true)

	res, err := e.publishing.PublishCourse(ctx, course.ID)
	require.NoError(t, err)
	require.True(t, res.Published, "missing: %v", res.Missing)
	return course, m, a
}

func (e *env) isCoursePublished(t *testing.T, courseID uuid.UUID) bool {
	t.Helper()
	c, err := e.courses.GetCourse(context.Background(), courseID)
	require.NoError(t, err)
	return c.IsPublished
}
