package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"comoresmarket/internal/domain/service"
	"comoresmarket/pkg/logger"
)

const publicHost = "https://storage.googleapis.com/"

// CloudStorageClient stores the named buckets (avatars, products,
// chat-images) as top-level folders of one GCS bucket.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	buckets    map[string]struct{}
}

func NewCloudStorageClient(ctx context.Context, bucketName string, buckets []string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	known := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		known[b] = struct{}{}
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		buckets:    known,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set storage CORS configuration: %v", err)
	}

	return storageClient, nil
}

var _ service.FileUploadService = (*CloudStorageClient)(nil)

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		_, err := bucket.Update(ctx, storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{{
				MaxAge:          3600,
				Methods:         []string{"GET", "HEAD"},
				Origins:         []string{"*"},
				ResponseHeaders: []string{"Content-Type"},
			}},
		})
		if err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// ObjectPrefix is the folder holding the uploads of ownerID in bucket.
func ObjectPrefix(bucket, ownerID string) string {
	return bucket + "/" + ownerID + "/"
}

func validOwner(ownerID string) bool {
	return ownerID != "" && ownerID != "." && ownerID != ".." && !strings.ContainsAny(ownerID, "/?#")
}

func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, contentType, bucket, ownerID string) (string, error) {
	if _, ok := c.buckets[bucket]; !ok {
		return "", fmt.Errorf("unknown storage bucket %q", bucket)
	}
	if !validOwner(ownerID) {
		return "", fmt.Errorf("invalid upload owner %q", ownerID)
	}

	objectName := fmt.Sprintf("%s%s-%s%s", ObjectPrefix(bucket, ownerID), uuid.New().String(),
		time.Now().Format("20060102150405"), extensionFor(contentType))

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	return c.PublicURL(objectName), nil
}

func (c *CloudStorageClient) PublicURL(objectName string) string {
	return publicHost + c.bucketName + "/" + objectName
}

// ObjectName extracts the object key from a public URL of this bucket.
func (c *CloudStorageClient) ObjectName(fileURL string) (string, error) {
	return ObjectNameFromURL(c.bucketName, fileURL)
}

// OwnsFile reports whether fileURL points into the owner's folder of bucket.
func (c *CloudStorageClient) OwnsFile(fileURL, bucket, ownerID string) bool {
	objectName, err := c.ObjectName(fileURL)
	if err != nil {
		return false
	}
	return OwnedObject(objectName, bucket, ownerID)
}

// OwnedObject checks an object key against the owner's folder. Nested paths
// and dot segments never match.
func OwnedObject(objectName, bucket, ownerID string) bool {
	if !validOwner(ownerID) {
		return false
	}
	rest, ok := strings.CutPrefix(objectName, ObjectPrefix(bucket, ownerID))
	return ok && rest != "" && !strings.Contains(rest, "/") && rest != "." && rest != ".."
}

func ObjectNameFromURL(bucketName, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicHost) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	path := strings.TrimPrefix(fileURL, publicHost)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] != bucketName || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	if i := strings.IndexAny(parts[1], "?#"); i >= 0 {
		return parts[1][:i], nil
	}
	return parts[1], nil
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	objectName, err := c.ObjectName(fileURL)
	if err != nil {
		return err
	}

	err = c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// DeleteFiles removes every object and returns the first error met.
func (c *CloudStorageClient) DeleteFiles(ctx context.Context, fileURLs []string) error {
	var firstErr error
	for _, fileURL := range fileURLs {
		if err := c.DeleteFile(ctx, fileURL); err != nil {
			logger.Warn("Failed to delete %s: %v", fileURL, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
