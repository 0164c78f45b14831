package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadUsesDeterministicKey(t *testing.T) {
	client := &fakeS3{}
	store := NewPhotoStore(client, "hospital-photos", "eu-west-3", "", zerolog.Nop())

	url, err := store.Upload(context.Background(), "abc123", "Avatar.PNG", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://hospital-photos.s3.eu-west-3.amazonaws.com/profiles/abc123.png", url)

	require.Len(t, client.puts, 1)
	assert.Equal(t, "hospital-photos", *client.puts[0].Bucket)
	assert.Equal(t, "profiles/abc123.png", *client.puts[0].Key)
	assert.Equal(t, "image/png", *client.puts[0].ContentType)

	// A re-upload lands on the same key and overwrites.
	_, err = store.Upload(context.Background(), "abc123", "new.png", "image/png", strings.NewReader("png2"))
	require.NoError(t, err)
	assert.Equal(t, *client.puts[0].Key, *client.puts[1].Key)
}

func TestUploadDefaultsExtension(t *testing.T) {
	client := &fakeS3{}
	store := NewPhotoStore(client, "hospital-photos", "eu-west-3", "https://cdn.example/", zerolog.Nop())

	url, err := store.Upload(context.Background(), "abc123", "photo", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/profiles/abc123.jpg", url)
}

func TestUploadPropagatesClientError(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	store := NewPhotoStore(client, "hospital-photos", "eu-west-3", "", zerolog.Nop())

	_, err := store.Upload(context.Background(), "abc123", "a.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiles/abc123.jpg")
}

func TestEnabled(t *testing.T) {
	assert.False(t, (*PhotoStore)(nil).Enabled())
	assert.False(t, NewPhotoStore(nil, "bucket", "r", "", zerolog.Nop()).Enabled())
	assert.False(t, NewPhotoStore(&fakeS3{}, "", "r", "", zerolog.Nop()).Enabled())
	assert.True(t, NewPhotoStore(&fakeS3{}, "bucket", "r", "", zerolog.Nop()).Enabled())

	_, err := NewPhotoStore(nil, "", "r", "", zerolog.Nop()).Upload(context.Background(), "u", "a.jpg", "image/jpeg", strings.NewReader("x"))
	assert.Error(t, err)
}
