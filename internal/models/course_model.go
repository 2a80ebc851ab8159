package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleLearner    Role = "LEARNER"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// User is the local profile behind the AuthID the gateway forwards.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthID          string    `gorm:"uniqueIndex;not null" json:"authId"`
	Name            string    `gorm:"not null" json:"name"`
	Username        string    `gorm:"uniqueIndex;not null" json:"username"`
	Role            Role      `gorm:"type:varchar(20);default:'LEARNER'" json:"role"`
	PayoutAccountID *string   `json:"payoutAccountId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug string    `gorm:"uniqueIndex;not null" json:"slug"`
}

// Course maps the 'courses' table. Nullable columns are the ones the
// publishing gate requires before a course can go live.
type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"not null" json:"title"`
	Slug         string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description  *string    `json:"description"`
	Price        *float64   `json:"price"` // major currency units
	CategoryID   *uuid.UUID `gorm:"type:uuid" json:"categoryId"`
	CoverImageID *uuid.UUID `gorm:"type:uuid" json:"coverImageId"`
	InstructorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"instructorId"`
	IsPublished  bool       `gorm:"default:false" json:"isPublished"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Instructor *User    `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Modules    []Module `json:"modules,omitempty"`
}

// Module maps the 'modules' table. Position is unique per course by
// convention; it is not a DB constraint so a reorder can swap positions.
type Module struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Articles []Article `json:"articles,omitempty"`
}

type Article struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     *string   `gorm:"type:text" json:"content"`
	IsFree      bool      `gorm:"default:false" json:"isFree"`
	IsPublished bool      `gorm:"default:false;index" json:"isPublished"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"moduleId"`
	Position    int       `gorm:"not null" json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Attachment points at a stored file; the bytes live outside this service.
type Attachment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	Name         string    `gorm:"not null" json:"name"`
	URL          string    `gorm:"not null" json:"url"`
	MimeType     string    `gorm:"type:varchar(100)" json:"mimeType"`
	IsCoverImage bool      `gorm:"default:false" json:"isCoverImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (m *User) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Module) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Article) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
func (m *Attachment) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
