package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// S3API is the slice of the S3 client the content store uses. Tests
// substitute a fake.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ContentStore on a single bucket.
type S3Store struct {
	client  S3API
	resizer Resizer
	bucket  string
	baseURL string
	log     zerolog.Logger
}

// NewS3Store creates a content store over the configured bucket.
func NewS3Store(client S3API, resizer Resizer, cfg *config.AWSConfig, log zerolog.Logger) *S3Store {
	return &S3Store{
		client:  client,
		resizer: resizer,
		bucket:  cfg.ContentBucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		log:     log.With().Str("component", "content_store").Logger(),
	}
}

func contentKey(table, id string) string { return fmt.Sprintf("%s/%s.md", table, id) }
func imageKey(id string) string          { return fmt.Sprintf("images/%s.png", id) }

// PutContent writes the front-matter document for an article. Overwrites
// silently.
func (s *S3Store) PutContent(ctx context.Context, table, id, body string, meta *models.ArticleMetadata) error {
	doc, err := encodeDocument(meta, body)
	if err != nil {
		return err
	}

	key := contentKey(table, id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(doc),
		ContentType: aws.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "putting content %s", key).WithID(id)
	}
	return nil
}

// GetContent fetches and parses the document, or returns NotFound.
func (s *S3Store) GetContent(ctx context.Context, table, id string) (*models.ArticleContent, error) {
	key := contentKey(table, id)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, apperr.New(apperr.KindNotFound, "content %s not found", key).WithID(id)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "getting content %s", key).WithID(id)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "reading content %s", key).WithID(id)
	}
	return decodeDocument(string(raw))
}

// DeleteContent removes the document. Deleting a missing key is not an error.
func (s *S3Store) DeleteContent(ctx context.Context, table, id string) error {
	key := contentKey(table, id)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "deleting content %s", key).WithID(id)
	}
	return nil
}

// PutImage resizes the upload and stores it as PNG, returning the durable URL.
func (s *S3Store) PutImage(ctx context.Context, id string, raw []byte, width, height int) (string, error) {
	resized, err := s.resizer.Resize(raw, width, height)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, err, "resizing image for article %s", id).WithID(id)
	}

	key := imageKey(id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(resized),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, err, "putting image %s", key).WithID(id)
	}
	return s.baseURL + "/" + key, nil
}

// DeleteImage removes the banner image. Idempotent.
func (s *S3Store) DeleteImage(ctx context.Context, id string) error {
	key := imageKey(id)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "deleting image %s", key).WithID(id)
	}
	return nil
}

// ImageURL reports the durable URL an image for id would be served from.
func (s *S3Store) ImageURL(id string) string {
	return s.baseURL + "/" + imageKey(id)
}
