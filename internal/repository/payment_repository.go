package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/models"
)

type IPaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*models.Payment, error)
	Settle(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*models.Payment, *models.Enrollment, error)
	MarkFailed(ctx context.Context, gatewayOrderID string, gatewayPaymentID string) (*models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) IPaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&payment).Error
	if err != nil {
		return nil, notFound(err, "payment_not_found", "payment for order", gatewayOrderID)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// Settle marks the payment SUCCESSFUL and upserts the buyer's enrollment in
// a single transaction. Both writes are idempotent, so a replayed webhook
// commits the same state again.
func (r *paymentRepository) Settle(ctx context.Context, gatewayOrderID, gatewayPaymentID string) (*models.Payment, *models.Enrollment, error) {
	var (
		payment    models.Payment
		enrollment *models.Enrollment
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gateway_order_id = ?", gatewayOrderID).First(&payment).Error; err != nil {
			return notFound(err, "payment_not_found", "payment for order", gatewayOrderID)
		}

		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":             models.PaymentSuccessful,
			"gateway_payment_id": gatewayPaymentID,
		}).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentSuccessful
		payment.GatewayPaymentID = &gatewayPaymentID

		var err error
		enrollment, err = upsertEnrollment(tx, payment.BuyerID, payment.CourseID, true)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &payment, enrollment, nil
}

// MarkFailed moves a PENDING payment to FAILED. A SUCCESSFUL payment is
// never downgraded; the stored row is returned unchanged.
func (r *paymentRepository) MarkFailed(ctx context.Context, gatewayOrderID string, gatewayPaymentID string) (*models.Payment, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":             models.PaymentFailed,
			"gateway_payment_id": gatewayPaymentID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetByOrderID(ctx, gatewayOrderID)
}
