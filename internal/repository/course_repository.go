package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/models"
)

// CoursePatch lists the course fields an instructor may change directly.
// Nil means "leave as is". Publish state and cover image have their own
// operations.
type CoursePatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	CategoryID  *uuid.UUID `json:"categoryId"`
}

func (p CoursePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return apperr.Validation("invalid_title", "title must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		return apperr.Validation("invalid_price", "price must not be negative")
	}
	return nil
}

func (p CoursePatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	return cols
}

type ICourseRepository interface {
	FindOrCreateUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	SetPayoutAccount(ctx context.Context, userID uuid.UUID, accountID string) error

	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	GetCourseWithInstructor(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	GetCourseDetails(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	GetPublishedCourseTree(ctx context.Context, courseID uuid.UUID) (*models.Course, error)
	GetPublishedCourses(ctx context.Context, page, limit int) ([]*models.Course, error)
	GetCoursesByInstructorID(ctx context.Context, instructorID uuid.UUID) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, patch CoursePatch) (*models.Course, error)
	SetCoursePublished(ctx context.Context, courseID uuid.UUID, published bool) (bool, error)
	SetCoverImage(ctx context.Context, courseID uuid.UUID, attachment *models.Attachment) error
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error

	IsSlugInUse(ctx context.Context, slug string) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) ICourseRepository {
	return &courseRepository{db: db}
}

func notFound(err error, code, what string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(code, "%s %v not found", what, id)
	}
	return err
}

// FindOrCreateUserByAuthID exchanges the gateway's AuthID for a local
// profile, creating a placeholder profile on first sight.
func (r *courseRepository) FindOrCreateUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		AuthID:   authID,
		Name:     "Pending Sync",
		Username: "pending-" + uuid.NewString(),
		Role:     models.RoleLearner,
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *courseRepository) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user_not_found", "user", userID)
	}
	return &user, nil
}

func (r *courseRepository) SetPayoutAccount(ctx context.Context, userID uuid.UUID, accountID string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("payout_account_id", accountID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user_not_found", "user %v not found", userID)
	}
	return nil
}

func (r *courseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) GetCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		return nil, notFound(err, "course_not_found", "course", courseID)
	}
	return &course, nil
}

func (r *courseRepository) GetCourseWithInstructor(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		First(&course, "id = ?", courseID).Error
	if err != nil {
		return nil, notFound(err, "course_not_found", "course", courseID)
	}
	return &course, nil
}

// GetCourseDetails returns the full edit tree, children ordered by position.
func (r *courseRepository) GetCourseDetails(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.position ASC")
		}).
		Preload("Modules.Articles", func(db *gorm.DB) *gorm.DB {
			return db.Order("articles.position ASC")
		}).
		Where("id = ?", courseID).
		First(&course).Error
	if err != nil {
		return nil, notFound(err, "course_not_found", "course", courseID)
	}
	return &course, nil
}

// GetPublishedCourseTree is the learner view: published course, published
// articles only.
func (r *courseRepository) GetPublishedCourseTree(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.position ASC")
		}).
		Preload("Modules.Articles", func(db *gorm.DB) *gorm.DB {
			return db.Where("articles.is_published = ?", true).Order("articles.position ASC")
		}).
		Where("id = ? AND is_published = ?", courseID, true).
		First(&course).Error
	if err != nil {
		return nil, notFound(err, "course_not_found", "course", courseID)
	}
	return &course, nil
}

func (r *courseRepository) GetPublishedCourses(ctx context.Context, page, limit int) ([]*models.Course, error) {
	var courses []*models.Course
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) GetCoursesByInstructorID(ctx context.Context, instructorID uuid.UUID) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("updated_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) UpdateCourse(ctx context.Context, courseID uuid.UUID, patch CoursePatch) (*models.Course, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	course, err := r.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	cols := patch.columns()
	if len(cols) > 0 {
		if err := r.db.WithContext(ctx).Model(course).Updates(cols).Error; err != nil {
			return nil, err
		}
	}
	return r.GetCourse(ctx, courseID)
}

// SetCoursePublished flips the flag and reports whether a row changed, so
// callers can tell an auto-unpublish from a no-op.
func (r *courseRepository) SetCoursePublished(ctx context.Context, courseID uuid.UUID, published bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ? AND is_published = ?", courseID, !published).
		Update("is_published", published)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetCoverImage stores the new attachment as the course cover and drops the
// flag from the previous one.
func (r *courseRepository) SetCoverImage(ctx context.Context, courseID uuid.UUID, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			return notFound(err, "course_not_found", "course", courseID)
		}

		if err := tx.Model(&models.Attachment{}).
			Where("course_id = ? AND is_cover_image = ?", courseID, true).
			Update("is_cover_image", false).Error; err != nil {
			return err
		}

		attachment.CourseID = courseID
		attachment.IsCoverImage = true
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			Update("cover_image_id", attachment.ID).Error
	})
}

// DeleteCourse removes the content tree and attachments. Courses that
// already have learners, or pending or settled payments, are kept.
func (r *courseRepository) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			return notFound(err, "course_not_found", "course", courseID)
		}

		var enrolled int64
		if err := tx.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled > 0 {
			return apperr.New(apperr.KindConflict, "course_has_enrollments",
				errors.New("course has enrolled learners and cannot be deleted"))
		}

		// An open order can still be captured and would enroll the buyer.
		var paid int64
		if err := tx.Model(&models.Payment{}).
			Where("course_id = ? AND status IN ?", courseID, []models.PaymentStatus{models.PaymentPending, models.PaymentSuccessful}).
			Count(&paid).Error; err != nil {
			return err
		}
		if paid > 0 {
			return apperr.New(apperr.KindConflict, "course_has_payments",
				errors.New("course has open or settled payments and cannot be deleted"))
		}

		moduleIDs := tx.Model(&models.Module{}).Select("id").Where("course_id = ?", courseID)
		articleIDs := tx.Model(&models.Article{}).Select("id").Where("module_id IN (?)", moduleIDs)

		if err := tx.Where("article_id IN (?)", articleIDs).Delete(&models.UserProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id IN (?)", moduleIDs).Delete(&models.Article{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.Request{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
}

// IsSlugInUse reports whether a course already uses slug.
func (r *courseRepository) IsSlugInUse(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return true, err
	}
	return count > 0, nil
}
