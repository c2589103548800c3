package fsxs3

import (
	"context"
	"fmt"
	"path"

	"github.com/Abraxas-365/resumelens/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// GetObjectAPI is the subset of *s3.Client the reader needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Reader struct {
	client GetObjectAPI
}

func NewReader(client GetObjectAPI) *Reader {
	return &Reader{client: client}
}

// NewFromRegion builds a reader from the default AWS credential chain.
func NewFromRegion(ctx context.Context, region string) (*Reader, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewReader(s3.NewFromConfig(cfg)), nil
}

func (r *Reader) Open(ctx context.Context, uri string) (*fsx.File, error) {
	bucket, key, ok := fsx.ParseS3URI(uri)
	if !ok {
		return nil, fmt.Errorf("invalid s3 uri %q", uri)
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}

	return &fsx.File{
		Name: path.Base(key),
		Size: size,
		Body: out.Body,
	}, nil
}
