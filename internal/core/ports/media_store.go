package ports

import "context"

// UploadedMedia describes an object accepted by the media host.
type UploadedMedia struct {
	URL         string
	Key         string
	ContentType string
	Size        int64
}

// MediaStore uploads a staged local file to the media host. Implementations
// remove the local file whether or not the upload succeeds.
type MediaStore interface {
	Upload(ctx context.Context, localPath string) (*UploadedMedia, error)
}
