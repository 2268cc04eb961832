package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Categories offered in the add/edit forms. The persistence layer
// accepts free text so that "autre" can cover anything else.
var Categories = []string{
	"carrelage",
	"sanitaires",
	"menuiseries alu",
	"plomberie",
	"électricité",
	"menuiserie bois",
	"cuisine",
	"luminaire",
	"structures métalliques",
	"autre",
}

// Rating tokens. Any other stored value is rendered as "no badge",
// never treated as an error.
const (
	RatingRed    = "red"
	RatingYellow = "yellow"
	RatingGreen  = "green"
)

type Supplier struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	Category        string     `gorm:"size:100;not null" json:"category"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Contact         string     `gorm:"size:50" json:"contact,omitempty"`
	WhatsappLink    string     `gorm:"size:255" json:"whatsapp_link,omitempty"`
	WechatLink      string     `gorm:"size:255" json:"wechat_link,omitempty"`
	Rating          string     `gorm:"size:20" json:"rating,omitempty"`
	PhotoFilename   string     `gorm:"size:255" json:"photo_filename,omitempty"`
	CatalogFilename string     `gorm:"size:255" json:"catalog_filename,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether the caller may view or mutate this supplier.
// Rows without an owner predate multi-user support and are exempt.
func (s *Supplier) OwnedBy(callerID uuid.UUID) bool {
	return s.UserID == nil || *s.UserID == callerID
}
