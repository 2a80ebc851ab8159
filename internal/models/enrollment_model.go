package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// Enrollment is the only thing that grants access to non-free articles.
type Enrollment struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course" json:"courseId"`
	IsPaymentVerified bool      `gorm:"default:false" json:"isPaymentVerified"`
	CreatedAt         time.Time `json:"createdAt"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// Request keeps history: several rows may exist per (user, course) and the
// one with the latest UpdatedAt is the current one.
type Request struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_request_user_course" json:"userId"`
	CourseID  uuid.UUID     `gorm:"type:uuid;not null;index:idx_request_user_course" json:"courseId"`
	Status    RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UserProgress is sparse: a missing row means "not completed".
type UserProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_article" json:"userId"`
	ArticleID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_article" json:"articleId"`
	IsCompleted bool      `gorm:"default:false" json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

func (m *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Request) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *UserProgress) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
