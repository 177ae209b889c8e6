package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DocumentStore wraps the S3 bucket holding uploaded documents. The store is
// an opaque blob store: the database keeps only url, size and mime type.
type DocumentStore struct {
	client *s3.S3
	bucket string
}

func NewDocumentStore(region, bucket string) (*DocumentStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &DocumentStore{
		client: s3.New(sess),
		bucket: bucket,
	}, nil
}

// Upload stores the object and returns its canonical s3 URL.
func (ds *DocumentStore) Upload(key string, body []byte, contentType string) (string, error) {
	_, err := ds.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ds.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", ds.bucket, key), nil
}

// PresignDownload returns a time-limited GET URL for the object.
func (ds *DocumentStore) PresignDownload(key string, ttl time.Duration) (string, error) {
	req, _ := ds.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(ds.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return url, nil
}

// Delete removes the object; missing keys are not an error.
func (ds *DocumentStore) Delete(key string) error {
	_, err := ds.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(ds.bucket),
		Key:    aws.String(key),
	})
	return err
}
