package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectPutterMock struct {
	PutObjectFunc    func(ctx context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	DeleteObjectFunc func(ctx context.Context, params *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *objectPutterMock) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params)
}

func (m *objectPutterMock) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.DeleteObjectFunc(ctx, params)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadFile(t *testing.T) {
	var stored []byte
	var storedKey, storedType string
	mock := &objectPutterMock{
		PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			storedKey = *in.Key
			storedType = *in.ContentType
			stored, _ = io.ReadAll(in.Body)
			return &s3.PutObjectOutput{}, nil
		},
	}
	s := &S3{client: mock, bucket: "recipes", publicBaseURL: "https://cdn.example.com"}

	key, contentType, err := s.UploadFile(context.Background(), "recipes/7", "Photo.PNG", bytes.NewReader(pngHeader), AllowImage...)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, key, storedKey)
	assert.Equal(t, "image/png", storedType)
	assert.True(t, strings.HasPrefix(key, "recipes/7/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, pngHeader, stored)

	link := s.PublicURL(key)
	assert.Equal(t, "https://cdn.example.com/"+key, link)
	assert.Equal(t, key, s.KeyFromURL(link))
	assert.Empty(t, s.KeyFromURL("https://elsewhere.example.com/x.png"))
}

func TestUploadFileRejectsContentType(t *testing.T) {
	s := &S3{client: &objectPutterMock{}, bucket: "recipes"}

	_, _, err := s.UploadFile(context.Background(), "recipes", "notes.txt", strings.NewReader("plain text"), AllowImage...)
	assert.True(t, errors.Is(err, ErrContentType))
}

func TestMediaTypeOf(t *testing.T) {
	assert.Equal(t, "video", MediaTypeOf("video/mp4"))
	assert.Equal(t, "image", MediaTypeOf("image/png"))
}
