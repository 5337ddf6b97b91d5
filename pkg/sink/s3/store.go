// Package s3 stores artifacts in an S3 compatible bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/pkg/errors"
)

// Store implements sink.Store on a single bucket. Keys are stored under Prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds construction parameters. Credentials fall back to the default
// AWS chain when the static keys are empty.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// New creates a store from cfg.
func New(ctx context.Context, cfg Config) (s *Store, err error) {
	if cfg.Bucket == "" {
		err = errors.New("s3 bucket required")
		return s, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	var awsCfg aws.Config
	awsCfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		err = errors.Wrap(err, "failed to load AWS config")
		return s, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s = &Store{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}
	return s, err
}

// Driver reports sink.DriverS3.
func (s *Store) Driver() (d sink.Driver) {
	d = sink.DriverS3
	return d
}

func (s *Store) objectKey(key string) (objKey string, err error) {
	objKey, err = sink.SanitizeKey(key)
	if err != nil {
		return objKey, err
	}
	if s.prefix != "" {
		objKey = path.Join(s.prefix, objKey)
	}
	return objKey, err
}

func (s *Store) keyFor(objKey string) (key string) {
	key = strings.TrimPrefix(objKey, s.prefix+"/")
	if s.prefix == "" {
		key = objKey
	}
	return key
}

func (s *Store) url(objKey string) (u string) {
	u = "s3://" + s.bucket + "/" + objKey
	return u
}

// Put uploads a new object. Create-only is emulated with a HEAD first.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (info sink.Info, err error) {
	var objKey string
	objKey, err = s.objectKey(key)
	if err != nil {
		return info, err
	}

	_, headErr := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objKey})
	if headErr == nil {
		err = errors.Wrapf(sink.ErrExists, "%s", s.url(objKey))
		return info, err
	}

	if contentType == "" {
		contentType = sink.ContentType(key)
	}

	// Buffer so the SDK can sign and retry with a seekable body.
	var data []byte
	data, err = io.ReadAll(r)
	if err != nil {
		err = errors.Wrapf(err, "failed to read artifact %s", key)
		return info, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objKey,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to upload %s", s.url(objKey))
		return info, err
	}

	info = sink.Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		URL:          s.url(objKey),
	}
	return info, err
}

// Get downloads an object.
func (s *Store) Get(ctx context.Context, key string) (info sink.Info, rc io.ReadCloser, err error) {
	var objKey string
	objKey, err = s.objectKey(key)
	if err != nil {
		return info, rc, err
	}

	var out *s3.GetObjectOutput
	out, err = s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &objKey})
	if err != nil {
		err = errors.Wrapf(err, "failed to download %s", s.url(objKey))
		return info, rc, err
	}

	info = sink.Info{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
		URL:          s.url(objKey),
	}
	rc = out.Body

	return info, rc, err
}

// List pages through the objects under prefix.
func (s *Store) List(ctx context.Context, prefix string) (infos []sink.Info, err error) {
	full := prefix
	if s.prefix != "" {
		full = s.prefix + "/" + prefix
	}

	var token *string
	for {
		var out *s3.ListObjectsV2Output
		out, err = s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &full, ContinuationToken: token})
		if err != nil {
			err = errors.Wrapf(err, "failed to list s3://%s/%s", s.bucket, full)
			return infos, err
		}

		for _, obj := range out.Contents {
			objKey := aws.ToString(obj.Key)
			key := s.keyFor(objKey)
			infos = append(infos, sink.Info{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				ContentType:  sink.ContentType(key),
				LastModified: aws.ToTime(obj.LastModified),
				URL:          s.url(objKey),
			})
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return infos, err
}
