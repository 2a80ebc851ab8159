package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wtppaul/course-marketplace/internal/models"
)

type IProgressRepository interface {
	Upsert(ctx context.Context, userID, articleID uuid.UUID, isCompleted bool) (*models.UserProgress, error)
	CountCompleted(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) (int64, error)
	GetByUserAndArticleIDs(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) ([]*models.UserProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) IProgressRepository {
	return &progressRepository{db: db}
}

// Upsert by unique user_id + article_id.
func (r *progressRepository) Upsert(ctx context.Context, userID, articleID uuid.UUID, isCompleted bool) (*models.UserProgress, error) {
	tx := r.db.WithContext(ctx)
	row := &models.UserProgress{UserID: userID, ArticleID: articleID, IsCompleted: isCompleted}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_completed": isCompleted,
			"updated_at":   time.Now(),
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	var stored models.UserProgress
	if err := tx.Where("user_id = ? AND article_id = ?", userID, articleID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *progressRepository) CountCompleted(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) (int64, error) {
	if len(articleIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserProgress{}).
		Where("user_id = ? AND is_completed = ? AND article_id IN ?", userID, true, articleIDs).
		Count(&count).Error
	return count, err
}

func (r *progressRepository) GetByUserAndArticleIDs(ctx context.Context, userID uuid.UUID, articleIDs []uuid.UUID) ([]*models.UserProgress, error) {
	var results []*models.UserProgress
	if len(articleIDs) == 0 {
		return results, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id IN ?", userID, articleIDs).
		Find(&results).Error
	return results, err
}
