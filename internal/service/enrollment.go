package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

// ArticleView is what a learner gets when opening an article. Content is
// nil when the article is locked for this user.
type ArticleView struct {
	*models.Article
	Locked bool `json:"locked"`
}

type EnrollmentService interface {
	CreateRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error)
	CurrentRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error)
	AcceptRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, *models.Enrollment, error)
	RejectRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	ListCourseRequests(ctx context.Context, courseID uuid.UUID) ([]*models.Request, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error)

	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	IsFree(ctx context.Context, articleID uuid.UUID) (bool, error)
	ReadArticle(ctx context.Context, userID, articleID uuid.UUID) (*ArticleView, error)
}

type enrollmentService struct {
	courses    repository.ICourseRepository
	content    repository.IContentRepository
	enrollment repository.IEnrollmentRepository
	log        *logger.Logger
}

func NewEnrollmentService(
	courses repository.ICourseRepository,
	content repository.IContentRepository,
	enrollment repository.IEnrollmentRepository,
	log *logger.Logger,
) EnrollmentService {
	return &enrollmentService{
		courses:    courses,
		content:    content,
		enrollment: enrollment,
		log:        log.With("service", "EnrollmentService"),
	}
}

// CreateRequest opens a new PENDING request. An enrolled user or a user
// whose current request is still pending is turned away.
func (s *enrollmentService) CreateRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := s.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperr.ErrAlreadyEnrolled
	}

	current, err := s.enrollment.LatestRequest(ctx, userID, courseID)
	if err != nil {
		s.log.Error("failed to load current request", "user_id", userID, "course_id", courseID, "error", err)
		return nil, err
	}
	if current != nil && current.Status == models.RequestPending {
		return nil, apperr.ErrRequestPending
	}

	req, err := s.enrollment.CreateRequest(ctx, userID, courseID)
	if err != nil {
		s.log.Error("failed to create request", "user_id", userID, "course_id", courseID, "error", err)
		return nil, err
	}
	return req, nil
}

// CurrentRequest returns the latest request, or a not-found error when the
// user never asked.
func (s *enrollmentService) CurrentRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	req, err := s.enrollment.LatestRequest(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("request_not_found", "no request for course %v", courseID)
	}
	return req, nil
}

func (s *enrollmentService) AcceptRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, *models.Enrollment, error) {
	req, enrollment, err := s.enrollment.AcceptRequest(ctx, requestID)
	if err != nil {
		s.log.Error("failed to accept request", "request_id", requestID, "error", err)
		return nil, nil, err
	}
	s.log.Info("request accepted", "request_id", requestID, "user_id", req.UserID, "course_id", req.CourseID)
	return req, enrollment, nil
}

func (s *enrollmentService) RejectRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	req, err := s.enrollment.RejectRequest(ctx, requestID)
	if err != nil {
		s.log.Warn("failed to reject request", "request_id", requestID, "error", err)
		return nil, err
	}
	return req, nil
}

// ListCourseRequests collapses the history to one row per user, keeping the
// most recent one.
func (s *enrollmentService) ListCourseRequests(ctx context.Context, courseID uuid.UUID) ([]*models.Request, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	rows, err := s.enrollment.ListRequestsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return latestPerUser(rows), nil
}

// latestPerUser expects rows sorted newest first; the first row seen for a
// user wins.
func latestPerUser(rows []*models.Request) []*models.Request {
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := make([]*models.Request, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (s *enrollmentService) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	return s.enrollment.ListEnrollmentsByUser(ctx, userID)
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	e, err := s.enrollment.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		s.log.Error("failed to load enrollment", "user_id", userID, "course_id", courseID, "error", err)
		return false, err
	}
	return e != nil, nil
}

func (s *enrollmentService) IsFree(ctx context.Context, articleID uuid.UUID) (bool, error) {
	article, err := s.content.GetArticle(ctx, articleID)
	if err != nil {
		return false, err
	}
	return article.IsFree, nil
}

// ReadArticle serves a published article of a published course. Paid
// content is withheld from users without an enrollment.
func (s *enrollmentService) ReadArticle(ctx context.Context, userID, articleID uuid.UUID) (*ArticleView, error) {
	article, err := s.content.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished {
		return nil, apperr.NotFound("article_not_found", "article %v not found", articleID)
	}

	courseID, err := s.content.CourseIDForArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperr.NotFound("article_not_found", "article %v not found", articleID)
	}

	if article.IsFree {
		return &ArticleView{Article: article}, nil
	}
	enrolled, err := s.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		article.Content = nil
		return &ArticleView{Article: article, Locked: true}, nil
	}
	return &ArticleView{Article: article}, nil
}
