package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateForTableStoresPNG(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3QRService{s3Service: mockS3, baseURL: "https://order.example.com"}

	key, err := svc.GenerateForTable(12)
	assert.NoError(t, err)
	assert.Equal(t, "qrcodes/table_12.png", key)

	data := mockS3.GetFile(key)
	assert.NotEmpty(t, data)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestGenerateForTableOverwritesOnRegeneration(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3QRService{s3Service: mockS3, baseURL: "https://order.example.com"}

	first, err := svc.GenerateForTable(3)
	assert.NoError(t, err)
	second, err := svc.GenerateForTable(3)
	assert.NoError(t, err)

	// Stable key: regenerating replaces the object rather than piling up copies
	assert.Equal(t, first, second)
	assert.True(t, mockS3.FileExists(first))
}

func TestRemoveForTable(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3QRService{s3Service: mockS3, baseURL: "https://order.example.com"}

	key, err := svc.GenerateForTable(5)
	assert.NoError(t, err)
	assert.True(t, mockS3.FileExists(key))

	assert.NoError(t, svc.RemoveForTable(5))
	assert.False(t, mockS3.FileExists(key))
}

func TestGetQRURL(t *testing.T) {
	mockS3 := NewMockS3Service()
	svc := &S3QRService{s3Service: mockS3, baseURL: "https://order.example.com"}

	url, err := svc.GetQRURL("")
	assert.NoError(t, err)
	assert.Empty(t, url)

	key, err := svc.GenerateForTable(8)
	assert.NoError(t, err)

	url, err = svc.GetQRURL(key)
	assert.NoError(t, err)
	assert.Contains(t, url, key)
}
