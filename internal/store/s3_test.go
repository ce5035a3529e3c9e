package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

type fakeS3 struct {
	objects map[string]string

	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	putErr      error
	getErr      error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInput = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	raw, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = string(raw)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(doc))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInput = in
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type stubResizer struct {
	out []byte
	err error
}

func (r *stubResizer) Resize(raw []byte, width, height int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.out, nil
}

func newTestS3Store(fake *fakeS3, resizer Resizer) *S3Store {
	cfg := &config.AWSConfig{
		ContentBucket: "article-content",
		PublicBaseURL: "https://cdn.example.com/",
	}
	return NewS3Store(fake, resizer, cfg, zerolog.Nop())
}

func TestContentRoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake, &stubResizer{})
	ctx := context.Background()

	meta := &models.ArticleMetadata{
		ID:          "a1",
		Title:       "Maps",
		Category:    "programming",
		Description: "short intro\n\nlonger second paragraph",
	}
	if err := s.PutContent(ctx, models.TableUnpublished, "a1", "body text", meta); err != nil {
		t.Fatalf("PutContent failed: %v", err)
	}

	if *fake.putInput.Key != "unpublished/a1.md" {
		t.Errorf("key = %q", *fake.putInput.Key)
	}
	if *fake.putInput.Bucket != "article-content" {
		t.Errorf("bucket = %q", *fake.putInput.Bucket)
	}
	if !strings.HasPrefix(*fake.putInput.ContentType, "text/markdown") {
		t.Errorf("content type = %q", *fake.putInput.ContentType)
	}

	doc, err := s.GetContent(ctx, models.TableUnpublished, "a1")
	if err != nil {
		t.Fatalf("GetContent failed: %v", err)
	}
	if doc.Body != "body text" {
		t.Errorf("body = %q", doc.Body)
	}
	if doc.Metadata.Title != "Maps" {
		t.Errorf("front-matter title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.Description != meta.Description {
		t.Errorf("front-matter description = %q, blank lines must survive", doc.Metadata.Description)
	}
}

func TestGetContent_MissingIsNotFound(t *testing.T) {
	s := newTestS3Store(newFakeS3(), &stubResizer{})

	_, err := s.GetContent(context.Background(), models.TablePublished, "ghost")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteContent_Idempotent(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake, &stubResizer{})
	ctx := context.Background()

	if err := s.DeleteContent(ctx, models.TableUnpublished, "never-existed"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
	if *fake.deleteInput.Key != "unpublished/never-existed.md" {
		t.Errorf("key = %q", *fake.deleteInput.Key)
	}
}

func TestPutImage(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake, &stubResizer{out: []byte{0x89, 0x50}})

	url, err := s.PutImage(context.Background(), "a1", []byte{1, 2, 3}, 1200, 800)
	if err != nil {
		t.Fatalf("PutImage failed: %v", err)
	}
	if url != "https://cdn.example.com/images/a1.png" {
		t.Errorf("url = %q", url)
	}
	if *fake.putInput.ContentType != "image/png" {
		t.Errorf("content type = %q", *fake.putInput.ContentType)
	}
	if fake.objects["images/a1.png"] != string([]byte{0x89, 0x50}) {
		t.Error("resized bytes should be stored, not the upload")
	}
}

func TestPutImage_BadUploadIsValidation(t *testing.T) {
	s := newTestS3Store(newFakeS3(), &stubResizer{err: errors.New("not an image")})

	_, err := s.PutImage(context.Background(), "a1", []byte("junk"), 1200, 800)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
