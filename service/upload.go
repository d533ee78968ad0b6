package service

import (
	"context"
	"io"
	"path"
)

// Upload is an image supplied with a request
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Image folders on the image host
const (
	folderProfiles    = "profiles"
	folderRestaurants = "restaurants"
	folderMenus       = "menus"
)

func uploadImage(ctx context.Context, images ImageUploader, folder string, u *Upload) (string, error) {
	return images.Upload(ctx, path.Join(folder, path.Base(u.Name)), u.ContentType, u.Body)
}
