package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/domain/service"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/response"
)

const maxUploadSize = 5 * 1024 * 1024

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

var uploadBuckets = map[string]bool{
	config.BucketAvatars:    true,
	config.BucketProducts:   true,
	config.BucketChatImages: true,
}

type UploadHandler struct {
	fileService service.FileUploadService
}

func NewUploadHandler(fileService service.FileUploadService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// imageUpload is an opened multipart image whose type was sniffed from its
// content rather than trusted from the client header.
type imageUpload struct {
	file        multipart.File
	contentType string
	size        int64
}

func (u *imageUpload) Close() error {
	return u.file.Close()
}

func openImage(c echo.Context, field string) (*imageUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, errors.BadRequest("Missing or invalid file", err)
	}
	if header.Size > maxUploadSize {
		return nil, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", maxUploadSize/(1024*1024)), nil)
	}

	src, err := header.Open()
	if err != nil {
		return nil, errors.Internal("Unable to read file", err)
	}

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		src.Close()
		return nil, errors.BadRequest("Unable to detect file type", err)
	}
	if !isAllowedImageType(mtype.String()) {
		src.Close()
		logger.Warn("openImage: rejected file type %s", mtype.String())
		return nil, errors.BadRequest("File type not supported", nil)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		src.Close()
		return nil, errors.Internal("Unable to read file", err)
	}

	return &imageUpload{file: src, contentType: mtype.String(), size: header.Size}, nil
}

func isAllowedImageType(contentType string) bool {
	mtype := mimetype.Lookup(contentType)
	for _, allowed := range allowedImageTypes {
		if contentType == allowed || (mtype != nil && mtype.Is(allowed)) {
			return true
		}
	}
	return false
}

// Upload stores an image in one of the public buckets and returns its URL.
func (h *UploadHandler) Upload(c echo.Context) error {
	bucket := c.Param("bucket")
	if !uploadBuckets[bucket] {
		return response.Error(c, errors.BadRequest("Unknown upload bucket", nil))
	}

	upload, err := openImage(c, "file")
	if err != nil {
		return response.Error(c, err)
	}
	defer upload.Close()

	uid := c.Get("uid").(string)
	url, err := h.fileService.UploadFile(c.Request().Context(), upload.file, upload.contentType, bucket, uid)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to upload file", err))
	}

	logger.Debug("Upload: %s stored %s (%d bytes)", uid, url, upload.size)
	return response.Created(c, map[string]interface{}{
		"url":          url,
		"content_type": upload.contentType,
		"size":         upload.size,
	})
}
