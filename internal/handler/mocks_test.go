package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
	"github.com/wtppaul/course-marketplace/internal/service"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) FindOrCreateUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	args := m.Called(ctx, authID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) SetPayoutAccount(ctx context.Context, userID uuid.UUID, accountID string) error {
	return m.Called(ctx, userID, accountID).Error(0)
}

type mockContent struct{ mock.Mock }

func (m *mockContent) CreateCourse(ctx context.Context, instructorID uuid.UUID, title string) (*models.Course, error) {
	args := m.Called(ctx, instructorID, title)
	c, _ := args.Get(0).(*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) UpdateCourse(ctx context.Context, courseID uuid.UUID, patch repository.CoursePatch) (*models.Course, error) {
	args := m.Called(ctx, courseID, patch)
	c, _ := args.Get(0).(*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	return m.Called(ctx, courseID).Error(0)
}

func (m *mockContent) SetCoverImage(ctx context.Context, courseID uuid.UUID, in service.AttachmentInput) (*models.Attachment, error) {
	args := m.Called(ctx, courseID, in)
	a, _ := args.Get(0).(*models.Attachment)
	return a, args.Error(1)
}

func (m *mockContent) GetCourseForEdit(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	c, _ := args.Get(0).(*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) GetPublishedCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	c, _ := args.Get(0).(*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) ListPublishedCourses(ctx context.Context, page, limit int) ([]*models.Course, error) {
	args := m.Called(ctx, page, limit)
	c, _ := args.Get(0).([]*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]*models.Course, error) {
	args := m.Called(ctx, instructorID)
	c, _ := args.Get(0).([]*models.Course)
	return c, args.Error(1)
}

func (m *mockContent) CreateModule(ctx context.Context, courseID uuid.UUID, title string) (*models.Module, error) {
	args := m.Called(ctx, courseID, title)
	mod, _ := args.Get(0).(*models.Module)
	return mod, args.Error(1)
}

func (m *mockContent) UpdateModule(ctx context.Context, moduleID uuid.UUID, patch repository.ModulePatch) (*models.Module, error) {
	args := m.Called(ctx, moduleID, patch)
	mod, _ := args.Get(0).(*models.Module)
	return mod, args.Error(1)
}

func (m *mockContent) ReorderModules(ctx context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error {
	return m.Called(ctx, courseID, updates).Error(0)
}

func (m *mockContent) DeleteModule(ctx context.Context, moduleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, moduleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockContent) CreateArticle(ctx context.Context, moduleID uuid.UUID, title string) (*models.Article, error) {
	args := m.Called(ctx, moduleID, title)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func (m *mockContent) GetArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error) {
	args := m.Called(ctx, articleID)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func (m *mockContent) UpdateArticle(ctx context.Context, articleID uuid.UUID, patch repository.ArticlePatch) (*models.Article, error) {
	args := m.Called(ctx, articleID, patch)
	a, _ := args.Get(0).(*models.Article)
	return a, args.Error(1)
}

func (m *mockContent) ReorderArticles(ctx context.Context, moduleID uuid.UUID, updates []repository.PositionUpdate) error {
	return m.Called(ctx, moduleID, updates).Error(0)
}

func (m *mockContent) DeleteArticle(ctx context.Context, articleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, articleID)
	return args.Bool(0), args.Error(1)
}

type mockPublishing struct{ mock.Mock }

func (m *mockPublishing) PublishArticle(ctx context.Context, id uuid.UUID) (service.PublishResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.PublishResult), args.Error(1)
}

func (m *mockPublishing) UnpublishArticle(ctx context.Context, id uuid.UUID) (service.PublishResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.PublishResult), args.Error(1)
}

func (m *mockPublishing) PublishCourse(ctx context.Context, id uuid.UUID) (service.PublishResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.PublishResult), args.Error(1)
}

func (m *mockPublishing) UnpublishCourse(ctx context.Context, id uuid.UUID) (service.PublishResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.PublishResult), args.Error(1)
}

func (m *mockPublishing) RecomputeCourse(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockProgress struct{ mock.Mock }

func (m *mockProgress) ComputeProgress(ctx context.Context, courseID, userID uuid.UUID) (*float64, error) {
	args := m.Called(ctx, courseID, userID)
	p, _ := args.Get(0).(*float64)
	return p, args.Error(1)
}

func (m *mockProgress) CourseProgressDetail(ctx context.Context, courseID, userID uuid.UUID) (*service.CourseProgress, error) {
	args := m.Called(ctx, courseID, userID)
	p, _ := args.Get(0).(*service.CourseProgress)
	return p, args.Error(1)
}

func (m *mockProgress) MarkArticleProgress(ctx context.Context, userID, articleID uuid.UUID, isCompleted bool) (*models.UserProgress, error) {
	args := m.Called(ctx, userID, articleID, isCompleted)
	p, _ := args.Get(0).(*models.UserProgress)
	return p, args.Error(1)
}

func (m *mockProgress) ListLearnerProgress(ctx context.Context, userID uuid.UUID) ([]*service.CourseProgress, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).([]*service.CourseProgress)
	return p, args.Error(1)
}

type mockEnrollment struct{ mock.Mock }

func (m *mockEnrollment) CreateRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, userID, courseID)
	r, _ := args.Get(0).(*models.Request)
	return r, args.Error(1)
}

func (m *mockEnrollment) CurrentRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, userID, courseID)
	r, _ := args.Get(0).(*models.Request)
	return r, args.Error(1)
}

func (m *mockEnrollment) AcceptRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, *models.Enrollment, error) {
	args := m.Called(ctx, requestID)
	r, _ := args.Get(0).(*models.Request)
	e, _ := args.Get(1).(*models.Enrollment)
	return r, e, args.Error(2)
}

func (m *mockEnrollment) RejectRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, requestID)
	r, _ := args.Get(0).(*models.Request)
	return r, args.Error(1)
}

func (m *mockEnrollment) ListCourseRequests(ctx context.Context, courseID uuid.UUID) ([]*models.Request, error) {
	args := m.Called(ctx, courseID)
	r, _ := args.Get(0).([]*models.Request)
	return r, args.Error(1)
}

func (m *mockEnrollment) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	args := m.Called(ctx, userID)
	e, _ := args.Get(0).([]*models.Enrollment)
	return e, args.Error(1)
}

func (m *mockEnrollment) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnrollment) IsFree(ctx context.Context, articleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, articleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnrollment) ReadArticle(ctx context.Context, userID, articleID uuid.UUID) (*service.ArticleView, error) {
	args := m.Called(ctx, userID, articleID)
	v, _ := args.Get(0).(*service.ArticleView)
	return v, args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) CreatePayment(ctx context.Context, courseID, buyerID uuid.UUID) (*service.Checkout, error) {
	args := m.Called(ctx, courseID, buyerID)
	c, _ := args.Get(0).(*service.Checkout)
	return c, args.Error(1)
}

func (m *mockPayments) VerifyPayment(ctx context.Context, rawBody []byte, signature string) (*service.Settlement, error) {
	args := m.Called(ctx, rawBody, signature)
	s, _ := args.Get(0).(*service.Settlement)
	return s, args.Error(1)
}

func (m *mockPayments) ListPayments(ctx context.Context, buyerID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, buyerID)
	p, _ := args.Get(0).([]*models.Payment)
	return p, args.Error(1)
}
