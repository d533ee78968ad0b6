package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"food-ordering-api/apperr"
	"food-ordering-api/service"

	"github.com/gin-gonic/gin"
	"github.com/vincent-petithory/dataurl"
)

// ImageField is the multipart field carrying restaurant and menu images
const ImageField = "imageFile"

// imageFile returns the named multipart file, or nil when none was sent.
// The caller closes the upload.
func imageFile(c *gin.Context, field string) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("Only image files are allowed")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &service.Upload{Name: fh.Filename, ContentType: contentType, Body: f}, nil
}

func closeUpload(u *service.Upload) {
	if u == nil {
		return
	}
	if rc, ok := u.Body.(io.Closer); ok {
		_ = rc.Close()
	}
}

// dataURI decodes an RFC 2397 data URI carrying an image into an upload
func dataURI(name, s string) (*service.Upload, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil || du.MediaType.Type != "image" || len(du.Data) == 0 {
		return nil, apperr.Validation("Profile picture must be an image")
	}
	return &service.Upload{
		Name:        name + imageExt(du.MediaType.Subtype),
		ContentType: du.MediaType.ContentType(),
		Body:        bytes.NewReader(du.Data),
	}, nil
}

// imageExt maps an image subtype to its usual file extension
func imageExt(subtype string) string {
	subtype, _, _ = strings.Cut(strings.ToLower(subtype), "+")
	switch subtype {
	case "jpeg", "pjpeg":
		return ".jpg"
	case "":
		return ""
	}
	return "." + subtype
}
