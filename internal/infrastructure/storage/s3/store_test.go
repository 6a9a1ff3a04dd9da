package s3

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	put     *s3.PutObjectInput
	body    []byte
	putErr  error
	headErr error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func stage(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestStore_Upload(t *testing.T) {
	objects := &fakeObjects{}
	store := newStore(objects, "media", "https://cdn.example.com/media/", zerolog.Nop())
	store.now = func() time.Time { return time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC) }
	path := stage(t, "avatar-123.png", pngHeader)

	media, err := store.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "image/png", media.ContentType)
	assert.Equal(t, int64(len(pngHeader)), media.Size)
	assert.True(t, strings.HasPrefix(media.Key, "images/2026/03/07/"), media.Key)
	assert.True(t, strings.HasSuffix(media.Key, ".png"), media.Key)
	assert.Equal(t, "https://cdn.example.com/media/"+media.Key, media.URL)

	require.NotNil(t, objects.put)
	assert.Equal(t, "media", *objects.put.Bucket)
	assert.Equal(t, "image/png", *objects.put.ContentType)
	assert.Equal(t, pngHeader, objects.body, "body must be sent from the start of the file")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "staged file must be removed")
}

func TestStore_Upload_FailureStillRemovesFile(t *testing.T) {
	objects := &fakeObjects{putErr: errors.New("access denied")}
	store := newStore(objects, "media", "https://cdn.example.com/media", zerolog.Nop())
	path := stage(t, "coverImage-1.png", pngHeader)

	_, err := store.Upload(context.Background(), path)
	require.ErrorIs(t, err, objects.putErr)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "staged file must be removed on failure")
}

func TestStore_Upload_MissingFile(t *testing.T) {
	store := newStore(&fakeObjects{}, "media", "https://cdn.example.com", zerolog.Nop())

	_, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)

	_, err = store.Upload(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_Ping(t *testing.T) {
	objects := &fakeObjects{}
	store := newStore(objects, "media", "", zerolog.Nop())
	assert.NoError(t, store.Ping(context.Background()))

	objects.headErr = errors.New("no such bucket")
	assert.Error(t, store.Ping(context.Background()))
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/media", defaultPublicURL(Config{Endpoint: "http://minio:9000/", Bucket: "media"}))
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", defaultPublicURL(Config{Bucket: "media", Region: "eu-west-1"}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "avatar", kindOf("/tmp/avatar-abc.png"))
	assert.Equal(t, "coverImage", kindOf("coverImage-abc.jpg"))
	assert.Equal(t, "other", kindOf("photo.jpg"))
}
