package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wtppaul/course-marketplace/internal/apperr"
	"github.com/wtppaul/course-marketplace/internal/models"
)

type IEnrollmentRepository interface {
	GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error)
	UpsertEnrollment(ctx context.Context, userID, courseID uuid.UUID, paymentVerified bool) (*models.Enrollment, error)

	CreateRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	LatestRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error)
	ListRequestsByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Request, error)
	AcceptRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, *models.Enrollment, error)
	RejectRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) IEnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// GetEnrollment returns (nil, nil) when the user is not enrolled.
func (r *enrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListEnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) UpsertEnrollment(ctx context.Context, userID, courseID uuid.UUID, paymentVerified bool) (*models.Enrollment, error) {
	return upsertEnrollment(r.db.WithContext(ctx), userID, courseID, paymentVerified)
}

// upsertEnrollment relies on the (user_id, course_id) unique index. A
// verified payment raises is_payment_verified; a manual accept never lowers
// it.
func upsertEnrollment(tx *gorm.DB, userID, courseID uuid.UUID, paymentVerified bool) (*models.Enrollment, error) {
	row := &models.Enrollment{
		UserID:            userID,
		CourseID:          courseID,
		IsPaymentVerified: paymentVerified,
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}
	if paymentVerified {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_payment_verified": true}),
		}
	}

	if err := tx.Clauses(onConflict).Create(row).Error; err != nil {
		return nil, err
	}

	var stored models.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *enrollmentRepository) CreateRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	req := &models.Request{UserID: userID, CourseID: courseID, Status: models.RequestPending}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *enrollmentRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	if err := r.db.WithContext(ctx).First(&req, "id = ?", requestID).Error; err != nil {
		return nil, notFound(err, "request_not_found", "request", requestID)
	}
	return &req, nil
}

// LatestRequest returns the current request (latest updated_at) or nil.
func (r *enrollmentRepository) LatestRequest(ctx context.Context, userID, courseID uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("updated_at DESC").
		Order("created_at DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequestsByCourse returns every historical row, newest first.
func (r *enrollmentRepository) ListRequestsByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Request, error) {
	var reqs []*models.Request
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("updated_at DESC").
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// AcceptRequest marks the request ACCEPTED and upserts the enrollment in one
// transaction. Accepting twice is harmless.
func (r *enrollmentRepository) AcceptRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, *models.Enrollment, error) {
	var (
		req        models.Request
		enrollment *models.Enrollment
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return notFound(err, "request_not_found", "request", requestID)
		}
		if err := setRequestStatus(tx, &req, models.RequestAccepted); err != nil {
			return err
		}
		var err error
		enrollment, err = upsertEnrollment(tx, req.UserID, req.CourseID, false)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &req, enrollment, nil
}

func (r *enrollmentRepository) RejectRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			return notFound(err, "request_not_found", "request", requestID)
		}
		if req.Status == models.RequestAccepted {
			return apperr.New(apperr.KindConflict, "request_already_accepted",
				errors.New("an accepted request cannot be rejected"))
		}
		return setRequestStatus(tx, &req, models.RequestRejected)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func setRequestStatus(tx *gorm.DB, req *models.Request, status models.RequestStatus) error {
	if req.Status == status {
		return nil
	}
	now := time.Now()
	if err := tx.Model(req).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}).Error; err != nil {
		return err
	}
	req.Status = status
	req.UpdatedAt = now
	return nil
}
