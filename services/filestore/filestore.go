// Package filestore keeps uploaded submission files.
package filestore

import (
	"path"

	"github.com/google/uuid"

	"github.com/submitly/backend/core"
)

var (
	extensions = map[string]string{
		"application/pdf":    ".pdf",
		"application/msword": ".doc",
		"application/zip":    ".zip",
		"image/jpeg":         ".jpg",
		"image/png":          ".png",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	}

	uuidFunc = uuid.New // mockable
)

// objectName builds a unique key like uploads/2024/03/<uuid>.pdf
func objectName(contentType string) string {
	now := core.NowFunc()
	return path.Join("uploads", now.Format("2006"), now.Format("01"), uuidFunc().String()+extensions[contentType])
}
