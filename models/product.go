package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a menu item. Price is stored in paise (1/100 rupee) so
// line totals never accumulate floating point drift. The unit price is copied
// into order items at merge time; editing a product later does not rewrite
// already-placed lines.
type Product struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null" json:"name"`
	Price      int64          `gorm:"not null;check:price >= 0" json:"price"` // paise
	CategoryID uint           `gorm:"not null;index" json:"category_id"`
	Category   Category       `gorm:"foreignKey:CategoryID" json:"category"`
	ImageS3Key *string        `json:"image_s3_key,omitempty"`       // nullable, S3 key for uploaded image
	ImageURL   *string        `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
