package models

import (
	"gorm.io/gorm"
)

// Prescription stores one successful upload-and-interpret cycle: the raw
// image bytes plus the AI interpretation. Immutable after creation.
type Prescription struct {
	gorm.Model

	UserID         uint   `json:"user_id" gorm:"index"`
	Image          []byte `json:"-" gorm:"type:bytea"`
	Interpretation string `json:"interpretation" gorm:"type:text"`
}
