package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

// CourseProgress is recomputed on every read and never stored.
// Percentage is nil when the course has no published article.
type CourseProgress struct {
	CourseID          uuid.UUID `json:"courseId"`
	PublishedArticles int       `json:"publishedArticles"`
	CompletedArticles int64     `json:"completedArticles"`
	Percentage        *float64  `json:"percentage"`
}

type ProgressService interface {
	ComputeProgress(ctx context.Context, courseID, userID uuid.UUID) (*float64, error)
	CourseProgressDetail(ctx context.Context, courseID, userID uuid.UUID) (*CourseProgress, error)
	MarkArticleProgress(ctx context.Context, userID, articleID uuid.UUID, isCompleted bool) (*models.UserProgress, error)
	ListLearnerProgress(ctx context.Context, userID uuid.UUID) ([]*CourseProgress, error)
}

type progressService struct {
	courses    repository.ICourseRepository
	content    repository.IContentRepository
	progress   repository.IProgressRepository
	enrollment repository.IEnrollmentRepository
	log        *logger.Logger
}

func NewProgressService(
	courses repository.ICourseRepository,
	content repository.IContentRepository,
	progress repository.IProgressRepository,
	enrollment repository.IEnrollmentRepository,
	log *logger.Logger,
) ProgressService {
	return &progressService{
		courses:    courses,
		content:    content,
		progress:   progress,
		enrollment: enrollment,
		log:        log.With("service", "ProgressService"),
	}
}

func percentage(completed int64, published int) *float64 {
	if published == 0 {
		return nil
	}
	p := float64(completed) / float64(published) * 100
	return &p
}

func (s *progressService) ComputeProgress(ctx context.Context, courseID, userID uuid.UUID) (*float64, error) {
	detail, err := s.CourseProgressDetail(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	return detail.Percentage, nil
}

func (s *progressService) CourseProgressDetail(ctx context.Context, courseID, userID uuid.UUID) (*CourseProgress, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.detail(ctx, courseID, userID)
}

func (s *progressService) detail(ctx context.Context, courseID, userID uuid.UUID) (*CourseProgress, error) {
	published, err := s.content.PublishedArticleIDs(ctx, courseID)
	if err != nil {
		s.log.Error("failed to load published articles", "course_id", courseID, "error", err)
		return nil, err
	}
	completed, err := s.progress.CountCompleted(ctx, userID, published)
	if err != nil {
		s.log.Error("failed to count completed articles", "course_id", courseID, "user_id", userID, "error", err)
		return nil, err
	}
	return &CourseProgress{
		CourseID:          courseID,
		PublishedArticles: len(published),
		CompletedArticles: completed,
		Percentage:        percentage(completed, len(published)),
	}, nil
}

// MarkArticleProgress records completion for any existing article. Access
// control is the caller's concern; free articles take progress from anyone.
func (s *progressService) MarkArticleProgress(ctx context.Context, userID, articleID uuid.UUID, isCompleted bool) (*models.UserProgress, error) {
	if _, err := s.content.GetArticle(ctx, articleID); err != nil {
		return nil, err
	}
	row, err := s.progress.Upsert(ctx, userID, articleID, isCompleted)
	if err != nil {
		s.log.Error("failed to save progress", "user_id", userID, "article_id", articleID, "error", err)
		return nil, err
	}
	return row, nil
}

// ListLearnerProgress computes progress for every course the user is
// enrolled in.
func (s *progressService) ListLearnerProgress(ctx context.Context, userID uuid.UUID) ([]*CourseProgress, error) {
	enrollments, err := s.enrollment.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to list enrollments", "user_id", userID, "error", err)
		return nil, err
	}

	results := make([]*CourseProgress, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, e := range enrollments {
		i, e := i, e
		g.Go(func() error {
			d, err := s.detail(gctx, e.CourseID, userID)
			if err != nil {
				return err
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
