package service

import (
	"context"
	"io"
)

type FileUploadService interface {
	// UploadFile stores the content in the owner's folder of the named bucket
	// and returns its public URL.
	UploadFile(ctx context.Context, file io.Reader, contentType, bucket, ownerID string) (string, error)
	// OwnsFile reports whether fileURL was uploaded by ownerID into bucket.
	OwnsFile(fileURL, bucket, ownerID string) bool
	DeleteFile(ctx context.Context, fileURL string) error
	DeleteFiles(ctx context.Context, fileURLs []string) error
	Close() error
}
