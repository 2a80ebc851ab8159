package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
)

// Names reported in PublishResult.Missing.
const (
	FieldTitle            = "title"
	FieldContent          = "content"
	FieldDescription      = "description"
	FieldPrice            = "price"
	FieldCategory         = "categoryId"
	FieldCoverImage       = "coverImageId"
	FieldPublishedArticle = "publishedArticle"
)

// PublishResult is the gate's answer. An incomplete entity is not an error:
// Published is false and Missing names the unmet requirements.
type PublishResult struct {
	Published         bool     `json:"published"`
	Missing           []string `json:"missing,omitempty"`
	CourseUnpublished bool     `json:"courseUnpublished,omitempty"`
}

type PublishingService interface {
	PublishArticle(ctx context.Context, articleID uuid.UUID) (PublishResult, error)
	UnpublishArticle(ctx context.Context, articleID uuid.UUID) (PublishResult, error)
	PublishCourse(ctx context.Context, courseID uuid.UUID) (PublishResult, error)
	UnpublishCourse(ctx context.Context, courseID uuid.UUID) (PublishResult, error)
	RecomputeCourse(ctx context.Context, courseID uuid.UUID) (bool, error)
}

type publishingService struct {
	courses repository.ICourseRepository
	content repository.IContentRepository
	log     *logger.Logger
}

func NewPublishingService(courses repository.ICourseRepository, content repository.IContentRepository, log *logger.Logger) PublishingService {
	return &publishingService{
		courses: courses,
		content: content,
		log:     log.With("service", "PublishingService"),
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// CheckArticle lists what an article still needs before it can be published.
func CheckArticle(a *models.Article) []string {
	var missing []string
	if strings.TrimSpace(a.Title) == "" {
		missing = append(missing, FieldTitle)
	}
	if blank(a.Content) {
		missing = append(missing, FieldContent)
	}
	return missing
}

// CheckCourse lists what a course still needs before it can be published.
func CheckCourse(c *models.Course, hasPublishedArticle bool) []string {
	var missing []string
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, FieldTitle)
	}
	if blank(c.Description) {
		missing = append(missing, FieldDescription)
	}
	if c.Price == nil {
		missing = append(missing, FieldPrice)
	}
	if c.CategoryID == nil {
		missing = append(missing, FieldCategory)
	}
	if c.CoverImageID == nil {
		missing = append(missing, FieldCoverImage)
	}
	if !hasPublishedArticle {
		missing = append(missing, FieldPublishedArticle)
	}
	return missing
}

func (s *publishingService) PublishArticle(ctx context.Context, articleID uuid.UUID) (PublishResult, error) {
	article, err := s.content.GetArticle(ctx, articleID)
	if err != nil {
		return PublishResult{}, err
	}
	if missing := CheckArticle(article); len(missing) > 0 {
		return PublishResult{Missing: missing}, nil
	}
	if err := s.content.SetArticlePublished(ctx, articleID, true); err != nil {
		s.log.Error("failed to publish article", "article_id", articleID, "error", err)
		return PublishResult{}, err
	}
	return PublishResult{Published: true}, nil
}

// UnpublishArticle always succeeds for an existing article and re-evaluates
// the owning course afterwards.
func (s *publishingService) UnpublishArticle(ctx context.Context, articleID uuid.UUID) (PublishResult, error) {
	courseID, err := s.content.CourseIDForArticle(ctx, articleID)
	if err != nil {
		return PublishResult{}, err
	}
	if err := s.content.SetArticlePublished(ctx, articleID, false); err != nil {
		s.log.Error("failed to unpublish article", "article_id", articleID, "error", err)
		return PublishResult{}, err
	}
	unpublished, err := s.RecomputeCourse(ctx, courseID)
	if err != nil {
		return PublishResult{}, err
	}
	return PublishResult{CourseUnpublished: unpublished}, nil
}

func (s *publishingService) PublishCourse(ctx context.Context, courseID uuid.UUID) (PublishResult, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return PublishResult{}, err
	}
	hasArticle, err := s.content.HasPublishedArticle(ctx, courseID)
	if err != nil {
		s.log.Error("failed to count published articles", "course_id", courseID, "error", err)
		return PublishResult{}, err
	}
	if missing := CheckCourse(course, hasArticle); len(missing) > 0 {
		return PublishResult{Missing: missing}, nil
	}
	if _, err := s.courses.SetCoursePublished(ctx, courseID, true); err != nil {
		s.log.Error("failed to publish course", "course_id", courseID, "error", err)
		return PublishResult{}, err
	}
	return PublishResult{Published: true}, nil
}

func (s *publishingService) UnpublishCourse(ctx context.Context, courseID uuid.UUID) (PublishResult, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return PublishResult{}, err
	}
	if _, err := s.courses.SetCoursePublished(ctx, courseID, false); err != nil {
		s.log.Error("failed to unpublish course", "course_id", courseID, "error", err)
		return PublishResult{}, err
	}
	return PublishResult{}, nil
}

// RecomputeCourse forces the course back to draft when no module holds a
// published article any more. It reads the article state fresh every time.
func (s *publishingService) RecomputeCourse(ctx context.Context, courseID uuid.UUID) (bool, error) {
	hasArticle, err := s.content.HasPublishedArticle(ctx, courseID)
	if err != nil {
		s.log.Error("failed to recompute course publish state", "course_id", courseID, "error", err)
		return false, err
	}
	if hasArticle {
		return false, nil
	}
	changed, err := s.courses.SetCoursePublished(ctx, courseID, false)
	if err != nil {
		s.log.Error("failed to auto-unpublish course", "course_id", courseID, "error", err)
		return false, err
	}
	if changed {
		s.log.Info("course auto-unpublished, no published article left", "course_id", courseID)
	}
	return changed, nil
}
