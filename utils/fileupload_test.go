package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		fileSize     int64
		expectedErr  bool
		expectedCode string
	}{
		{"valid png", "dish.png", 1024, false, ""},
		{"valid jpg", "dish.jpg", 1024, false, ""},
		{"valid jpeg uppercase", "DISH.JPEG", 1024, false, ""},
		{"gif rejected", "dish.gif", 1024, true, "INVALID_FILE_FORMAT"},
		{"no extension", "dish", 1024, true, "INVALID_FILE_FORMAT"},
		{"at size limit", "dish.png", MaxFileSize, false, ""},
		{"over size limit", "dish.png", MaxFileSize + 1, true, "FILE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileHeader := &multipart.FileHeader{
				Filename: tt.fileName,
				Size:     tt.fileSize,
			}

			err := ValidateImageFile(fileHeader)
			if !tt.expectedErr {
				assert.NoError(t, err)
				return
			}

			var uploadErr *FileUploadError
			assert.ErrorAs(t, err, &uploadErr)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}
