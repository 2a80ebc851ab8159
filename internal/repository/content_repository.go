package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/models"
)

type ModulePatch struct {
	Title *string `json:"title"`
}

func (p ModulePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return apperr.Validation("invalid_title", "title must not be empty")
	}
	return nil
}

// ArticlePatch lists the article fields an instructor may change directly.
// Publish state goes through the publishing gate instead.
type ArticlePatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	IsFree  *bool   `json:"isFree"`
}

func (p ArticlePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return apperr.Validation("invalid_title", "title must not be empty")
	}
	return nil
}

func (p ArticlePatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.IsFree != nil {
		cols["is_free"] = *p.IsFree
	}
	return cols
}

// IContentRepository stores the module/article levels of the content tree.
type IContentRepository interface {
	CreateModule(ctx context.Context, courseID uuid.UUID, title string) (*models.Module, error)
	GetModule(ctx context.Context, moduleID uuid.UUID) (*models.Module, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, patch ModulePatch) (*models.Module, error)
	ReorderModules(ctx context.Context, courseID uuid.UUID, updates []PositionUpdate) error
	DeleteModule(ctx context.Context, moduleID uuid.UUID) (courseID uuid.UUID, err error)

	CreateArticle(ctx context.Context, moduleID uuid.UUID, title string) (*models.Article, error)
	GetArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error)
	UpdateArticle(ctx context.Context, articleID uuid.UUID, patch ArticlePatch) (*models.Article, error)
	SetArticlePublished(ctx context.Context, articleID uuid.UUID, published bool) error
	ReorderArticles(ctx context.Context, moduleID uuid.UUID, updates []PositionUpdate) error
	DeleteArticle(ctx context.Context, articleID uuid.UUID) (courseID uuid.UUID, err error)

	CourseIDForArticle(ctx context.Context, articleID uuid.UUID) (uuid.UUID, error)
	HasPublishedArticle(ctx context.Context, courseID uuid.UUID) (bool, error)
	PublishedArticleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) IContentRepository {
	return &contentRepository{db: db}
}

// nextPosition returns max(position)+1 among the rows matching the parent
// condition, 1 when there are none.
func nextPosition(tx *gorm.DB, model interface{}, parentColumn string, parentID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(model).
		Where(parentColumn+" = ?", parentID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *contentRepository) CreateModule(ctx context.Context, courseID uuid.UUID, title string) (*models.Module, error) {
	module := &models.Module{Title: strings.TrimSpace(title), CourseID: courseID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Select("id").First(&course, "id = ?", courseID).Error; err != nil {
			return notFound(err, "course_not_found", "course", courseID)
		}
		pos, err := nextPosition(tx, &models.Module{}, "course_id", courseID)
		if err != nil {
			return err
		}
		module.Position = pos
		return tx.Create(module).Error
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (r *contentRepository) GetModule(ctx context.Context, moduleID uuid.UUID) (*models.Module, error) {
	var module models.Module
	err := r.db.WithContext(ctx).
		Preload("Articles", func(db *gorm.DB) *gorm.DB {
			return db.Order("articles.position ASC")
		}).
		First(&module, "id = ?", moduleID).Error
	if err != nil {
		return nil, notFound(err, "module_not_found", "module", moduleID)
	}
	return &module, nil
}

func (r *contentRepository) UpdateModule(ctx context.Context, moduleID uuid.UUID, patch ModulePatch) (*models.Module, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		res := r.db.WithContext(ctx).
			Model(&models.Module{}).
			Where("id = ?", moduleID).
			Update("title", strings.TrimSpace(*patch.Title))
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetModule(ctx, moduleID)
}

func (r *contentRepository) ReorderModules(ctx context.Context, courseID uuid.UUID, updates []PositionUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []PositionUpdate
		if err := tx.Model(&models.Module{}).
			Select("id, position").
			Where("course_id = ?", courseID).
			Scan(&current).Error; err != nil {
			return err
		}
		if err := ValidateReorder(current, updates); err != nil {
			return err
		}
		for _, u := range updates {
			if err := tx.Model(&models.Module{}).
				Where("id = ? AND course_id = ?", u.ID, courseID).
				Update("position", u.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteModule removes the module with its articles and their progress
// rows. Remaining modules keep their positions.
func (r *contentRepository) DeleteModule(ctx context.Context, moduleID uuid.UUID) (uuid.UUID, error) {
	var courseID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module models.Module
		if err := tx.First(&module, "id = ?", moduleID).Error; err != nil {
			return notFound(err, "module_not_found", "module", moduleID)
		}
		courseID = module.CourseID

		articleIDs := tx.Model(&models.Article{}).Select("id").Where("module_id = ?", moduleID)
		if err := tx.Where("article_id IN (?)", articleIDs).Delete(&models.UserProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", moduleID).Delete(&models.Article{}).Error; err != nil {
			return err
		}
		return tx.Delete(&module).Error
	})
	return courseID, err
}

func (r *contentRepository) CreateArticle(ctx context.Context, moduleID uuid.UUID, title string) (*models.Article, error) {
	article := &models.Article{Title: strings.TrimSpace(title), ModuleID: moduleID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module models.Module
		if err := tx.Select("id").First(&module, "id = ?", moduleID).Error; err != nil {
			return notFound(err, "module_not_found", "module", moduleID)
		}
		pos, err := nextPosition(tx, &models.Article{}, "module_id", moduleID)
		if err != nil {
			return err
		}
		article.Position = pos
		return tx.Create(article).Error
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (r *contentRepository) GetArticle(ctx context.Context, articleID uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, "id = ?", articleID).Error; err != nil {
		return nil, notFound(err, "article_not_found", "article", articleID)
	}
	return &article, nil
}

func (r *contentRepository) UpdateArticle(ctx context.Context, articleID uuid.UUID, patch ArticlePatch) (*models.Article, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	article, err := r.GetArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	cols := patch.columns()
	if len(cols) > 0 {
		if err := r.db.WithContext(ctx).Model(article).Updates(cols).Error; err != nil {
			return nil, err
		}
	}
	return r.GetArticle(ctx, articleID)
}

func (r *contentRepository) SetArticlePublished(ctx context.Context, articleID uuid.UUID, published bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", articleID).
		Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("article_not_found", "article %v not found", articleID)
	}
	return nil
}

func (r *contentRepository) ReorderArticles(ctx context.Context, moduleID uuid.UUID, updates []PositionUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []PositionUpdate
		if err := tx.Model(&models.Article{}).
			Select("id, position").
			Where("module_id = ?", moduleID).
			Scan(&current).Error; err != nil {
			return err
		}
		if err := ValidateReorder(current, updates); err != nil {
			return err
		}
		for _, u := range updates {
			if err := tx.Model(&models.Article{}).
				Where("id = ? AND module_id = ?", u.ID, moduleID).
				Update("position", u.Position).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteArticle removes the article and its progress rows. Siblings are not
// renumbered. The owning course id is returned for the publish recompute.
func (r *contentRepository) DeleteArticle(ctx context.Context, articleID uuid.UUID) (uuid.UUID, error) {
	var courseID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		courseID, err = courseIDForArticle(tx, articleID)
		if err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", articleID).Delete(&models.UserProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", articleID).Delete(&models.Article{}).Error
	})
	return courseID, err
}

func (r *contentRepository) CourseIDForArticle(ctx context.Context, articleID uuid.UUID) (uuid.UUID, error) {
	return courseIDForArticle(r.db.WithContext(ctx), articleID)
}

func courseIDForArticle(tx *gorm.DB, articleID uuid.UUID) (uuid.UUID, error) {
	var module models.Module
	err := tx.Model(&models.Module{}).
		Select("modules.id, modules.course_id").
		Joins("JOIN articles ON articles.module_id = modules.id").
		Where("articles.id = ?", articleID).
		First(&module).Error
	if err != nil {
		return uuid.Nil, notFound(err, "article_not_found", "article", articleID)
	}
	return module.CourseID, nil
}

// HasPublishedArticle always hits storage; the publishing gate relies on it
// not being cached.
func (r *contentRepository) HasPublishedArticle(ctx context.Context, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Joins("JOIN modules ON modules.id = articles.module_id").
		Where("modules.course_id = ? AND articles.is_published = ?", courseID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contentRepository) PublishedArticleIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Joins("JOIN modules ON modules.id = articles.module_id").
		Where("modules.course_id = ? AND articles.is_published = ?", courseID, true).
		Pluck("articles.id", &ids).Error
	return ids, err
}
