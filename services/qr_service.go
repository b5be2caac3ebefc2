package services

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRService generates and stores per-table QR codes. Each code encodes the
// public menu URL for its table; scanning it opens the table's menu.
type QRService interface {
	// GenerateForTable renders and stores the table's QR PNG, returning the
	// storage key. Regeneration overwrites the previous object.
	GenerateForTable(tableID uint) (string, error)

	// GetQRURL generates a URL for viewing a stored QR code
	GetQRURL(qrKey string) (string, error)

	// RemoveForTable deletes the table's QR code from storage
	RemoveForTable(tableID uint) error
}

// S3QRService implements QRService on top of the S3 storage layer
type S3QRService struct {
	s3Service S3Interface
	baseURL   string
}

var qrServiceInstance QRService

// InitQRService initializes the QR service. baseURL is the externally
// reachable host the QR codes point customers at.
func InitQRService(s3Service S3Interface, baseURL string) QRService {
	qrServiceInstance = &S3QRService{
		s3Service: s3Service,
		baseURL:   baseURL,
	}
	return qrServiceInstance
}

// GetQRService returns the initialized QR service instance
func GetQRService() QRService {
	return qrServiceInstance
}

// SetQRService sets the QR service instance (primarily for testing)
func SetQRService(service QRService) {
	qrServiceInstance = service
}

// QRKeyForTable returns the stable storage key for a table's QR code
func QRKeyForTable(tableID uint) string {
	return fmt.Sprintf("qrcodes/table_%d.png", tableID)
}

// GenerateForTable renders the table's menu URL as a 256px PNG at high error
// correction (codes get laminated and scratched on restaurant tables) and
// uploads it under the table's stable key.
func (s *S3QRService) GenerateForTable(tableID uint) (string, error) {
	menuURL := fmt.Sprintf("%s/menu/%d", s.baseURL, tableID)

	png, err := qrcode.Encode(menuURL, qrcode.High, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR for table %d: %w", tableID, err)
	}

	key := QRKeyForTable(tableID)
	if err := s.s3Service.UploadBytes(key, png, "image/png"); err != nil {
		return "", fmt.Errorf("failed to store QR for table %d: %w", tableID, err)
	}

	return key, nil
}

// GetQRURL generates a presigned URL for a stored QR code
func (s *S3QRService) GetQRURL(qrKey string) (string, error) {
	if qrKey == "" {
		return "", nil
	}
	return s.s3Service.GetPresignedURL(qrKey)
}

// RemoveForTable deletes the table's QR code from storage
func (s *S3QRService) RemoveForTable(tableID uint) error {
	return s.s3Service.DeleteFile(QRKeyForTable(tableID))
}
