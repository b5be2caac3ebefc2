package models

import (
	"time"

	"gorm.io/gorm"
)

// Table represents a physical restaurant table. Each table gets a QR code
// pointing customers at its menu URL; at most one non-completed order exists
// per table at any time.
type Table struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	QRS3Key   *string        `json:"qr_s3_key,omitempty"`       // nullable, S3 key for the QR PNG
	QRURL     *string        `gorm:"-" json:"qr_url,omitempty"` // computed field, presigned URL for the QR PNG
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Table model
func (Table) TableName() string {
	return "tables"
}
