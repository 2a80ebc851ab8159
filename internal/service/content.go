package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
	"github.com/wtppaul/course-marketplace/internal/repository"
	"github.com/wtppaul/course-marketplace/internal/utils"
)

// AttachmentInput describes an already stored file.
type AttachmentInput struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
	MimeType string `json:"mimeType"`
}

type ContentService interface {
	CreateCourse(ctx context.Context, instructorID uuid.UUID, title string) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, patch repository.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
	SetCoverImage(ctx context.Context, courseID uuid.UUID, in AttachmentInput) (*models.Attachment, error)
	GetCourseForEdit(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	GetPublishedCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	ListPublishedCourses(ctx context.Context, page, limit int) ([]*models.Course, error)
	ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]*models.Course, error)

	CreateModule(ctx context.Context, courseID uuid.UUID, title string) (*models.Module, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, patch repository.ModulePatch) (*models.Module, error)
	ReorderModules(ctx context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error
	DeleteModule(ctx context.Context, moduleID uuid.UUID) (courseUnpublished bool, err error)

	CreateArticle(ctx context.Context, moduleID uuid.UUID, title string) (*models.Article, error)
	GetArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error)
	UpdateArticle(ctx context.Context, articleID uuid.UUID, patch repository.ArticlePatch) (*models.Article, error)
	ReorderArticles(ctx context.Context, moduleID uuid.UUID, updates []repository.PositionUpdate) error
	DeleteArticle(ctx context.Context, articleID uuid.UUID) (courseUnpublished bool, err error)
}

type contentService struct {
	courses    repository.ICourseRepository
	content    repository.IContentRepository
	publishing PublishingService
	log        *logger.Logger
}

func NewContentService(
	courses repository.ICourseRepository,
	content repository.IContentRepository,
	publishing PublishingService,
	log *logger.Logger,
) ContentService {
	return &contentService{
		courses:    courses,
		content:    content,
		publishing: publishing,
		log:        log.With("service", "ContentService"),
	}
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("invalid_title", "title must not be empty")
	}
	return title, nil
}

func (s *contentService) CreateCourse(ctx context.Context, instructorID uuid.UUID, title string) (*models.Course, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.GetUser(ctx, instructorID); err != nil {
		return nil, err
	}

	slug, err := utils.GenerateUniqueSlug(ctx, title, s.courses.IsSlugInUse)
	if err != nil {
		s.log.Error("failed to generate slug", "instructor_id", instructorID, "error", err)
		return nil, err
	}

	course := &models.Course{
		Title:        title,
		Slug:         slug,
		InstructorID: instructorID,
	}
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		s.log.Error("failed to create course", "instructor_id", instructorID, "error", err)
		return nil, err
	}
	return course, nil
}

// UpdateCourse applies the patch and takes a published course back to draft
// when the patch left it incomplete.
func (s *contentService) UpdateCourse(ctx context.Context, courseID uuid.UUID, patch repository.CoursePatch) (*models.Course, error) {
	course, err := s.courses.UpdateCourse(ctx, courseID, patch)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return course, nil
	}

	hasArticle, err := s.content.HasPublishedArticle(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if missing := CheckCourse(course, hasArticle); len(missing) > 0 {
		if _, err := s.courses.SetCoursePublished(ctx, courseID, false); err != nil {
			s.log.Error("failed to unpublish incomplete course", "course_id", courseID, "error", err)
			return nil, err
		}
		s.log.Info("course unpublished after update", "course_id", courseID, "missing", missing)
		course.IsPublished = false
	}
	return course, nil
}

func (s *contentService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if err := s.courses.DeleteCourse(ctx, courseID); err != nil {
		s.log.Warn("failed to delete course", "course_id", courseID, "error", err)
		return err
	}
	return nil
}

func (s *contentService) SetCoverImage(ctx context.Context, courseID uuid.UUID, in AttachmentInput) (*models.Attachment, error) {
	if strings.TrimSpace(in.URL) == "" {
		return nil, apperr.Validation("invalid_attachment", "attachment url is required")
	}
	attachment := &models.Attachment{
		Name:     in.Name,
		URL:      in.URL,
		MimeType: in.MimeType,
	}
	if err := s.courses.SetCoverImage(ctx, courseID, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *contentService) GetCourseForEdit(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	return s.courses.GetCourseDetails(ctx, courseID)
}

func (s *contentService) GetPublishedCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	return s.courses.GetPublishedCourseTree(ctx, courseID)
}

func (s *contentService) ListPublishedCourses(ctx context.Context, page, limit int) ([]*models.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.courses.GetPublishedCourses(ctx, page, limit)
}

func (s *contentService) ListInstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]*models.Course, error) {
	return s.courses.GetCoursesByInstructorID(ctx, instructorID)
}

func (s *contentService) CreateModule(ctx context.Context, courseID uuid.UUID, title string) (*models.Module, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.content.CreateModule(ctx, courseID, title)
}

func (s *contentService) UpdateModule(ctx context.Context, moduleID uuid.UUID, patch repository.ModulePatch) (*models.Module, error) {
	return s.content.UpdateModule(ctx, moduleID, patch)
}

func (s *contentService) ReorderModules(ctx context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error {
	if err := s.content.ReorderModules(ctx, courseID, updates); err != nil {
		s.log.Warn("module reorder rejected", "course_id", courseID, "error", err)
		return err
	}
	return nil
}

func (s *contentService) DeleteModule(ctx context.Context, moduleID uuid.UUID) (bool, error) {
	courseID, err := s.content.DeleteModule(ctx, moduleID)
	if err != nil {
		return false, err
	}
	return s.publishing.RecomputeCourse(ctx, courseID)
}

func (s *contentService) CreateArticle(ctx context.Context, moduleID uuid.UUID, title string) (*models.Article, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.content.CreateArticle(ctx, moduleID, title)
}

func (s *contentService) GetArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error) {
	return s.content.GetArticle(ctx, articleID)
}

// UpdateArticle applies the patch. A published article the patch left
// incomplete goes back to draft and its course is re-evaluated.
func (s *contentService) UpdateArticle(ctx context.Context, articleID uuid.UUID, patch repository.ArticlePatch) (*models.Article, error) {
	article, err := s.content.UpdateArticle(ctx, articleID, patch)
	if err != nil {
		return nil, err
	}
	if !article.IsPublished || len(CheckArticle(article)) == 0 {
		return article, nil
	}

	if _, err := s.publishing.UnpublishArticle(ctx, articleID); err != nil {
		return nil, err
	}
	article.IsPublished = false
	return article, nil
}

func (s *contentService) ReorderArticles(ctx context.Context, moduleID uuid.UUID, updates []repository.PositionUpdate) error {
	if err := s.content.ReorderArticles(ctx, moduleID, updates); err != nil {
		s.log.Warn("article reorder rejected", "module_id", moduleID, "error", err)
		return err
	}
	return nil
}

func (s *contentService) DeleteArticle(ctx context.Context, articleID uuid.UUID) (bool, error) {
	courseID, err := s.content.DeleteArticle(ctx, articleID)
	if err != nil {
		return false, err
	}
	return s.publishing.RecomputeCourse(ctx, courseID)
}
