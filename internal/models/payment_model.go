package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentFailed     PaymentStatus = "FAILED"
)

// Payment amounts are minor currency units (paise, cents).
// Amount == CommissionAmount + GatewayFee + SellerAmount always holds.
type Payment struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	GatewayOrderID   string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"gatewayOrderId"`
	GatewayPaymentID *string       `gorm:"type:varchar(100)" json:"gatewayPaymentId,omitempty"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(10);not null" json:"currency"`
	CommissionAmount int64         `gorm:"not null" json:"commissionAmount"`
	GatewayFee       int64         `gorm:"not null" json:"gatewayFee"`
	SellerAmount     int64         `gorm:"not null" json:"sellerAmount"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CourseID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"courseId"`
	BuyerID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"buyerId"`
	SellerID         uuid.UUID     `gorm:"type:uuid;not null" json:"sellerId"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (m *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
