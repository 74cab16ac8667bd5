package storage

import (
	"context"
	"io"
)

// UploadResult описывает объект, сохранённый в хранилище экспортов.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстрагирует объектное хранилище, в которое публикуются
// CSV-выгрузки расписаний. Location в результате - готовая публичная ссылка.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
