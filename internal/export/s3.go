package export

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Sharer publishes exported files to an S3 bucket and hands back a
// presigned download URL, standing in for the mobile platform's share sheet.
type S3Sharer struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	ttl     time.Duration
}

// NewS3Sharer creates a sharer that uploads under bucket/prefix with
// presigned URLs valid for ttl.
func NewS3Sharer(client *s3.Client, bucket, prefix string, ttl time.Duration) *S3Sharer {
	return &S3Sharer{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		prefix:  prefix,
		ttl:     ttl,
	}
}

var _ Sharer = (*S3Sharer)(nil)

// Share uploads the file behind h and returns a presigned GET URL.
func (s *S3Sharer) Share(ctx context.Context, h Handle) (string, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return "", &Error{Op: "share open", Err: err}
	}
	defer f.Close()

	key := filepath.ToSlash(filepath.Join(s.prefix, filepath.Base(h.Path)))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(xlsxContentType),
	})
	if err != nil {
		return "", &Error{Op: "share upload", Err: err}
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", &Error{Op: "share presign", Err: err}
	}
	return req.URL, nil
}

// LocalSharer is the development fallback: the exported file stays on disk
// and the handle path doubles as the shared location.
type LocalSharer struct{}

var _ Sharer = LocalSharer{}

// Share returns the local path unchanged.
func (LocalSharer) Share(_ context.Context, h Handle) (string, error) {
	return h.Path, nil
}
