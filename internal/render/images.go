package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxImageBytes = 8 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrImageNotFound    = errors.New("image not found")
)

// Image is a decoded-ready profile photo. Type is the fpdf image type (JPG, PNG, GIF).
type Image struct {
	Data []byte
	Type string
}

// ImageLoader fetches the photo referenced by a record's image_path.
type ImageLoader interface {
	Load(ctx context.Context, path string) (*Image, error)
}

func imageFromBytes(b []byte) (*Image, error) {
	switch http.DetectContentType(b) {
	case "image/jpeg":
		return &Image{Data: b, Type: "JPG"}, nil
	case "image/png":
		return &Image{Data: b, Type: "PNG"}, nil
	case "image/gif":
		return &Image{Data: b, Type: "GIF"}, nil
	}
	return nil, ErrUnsupportedImage
}

func readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxImageBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedImage, maxImageBytes)
	}
	return b, nil
}

type HTTPImageLoader struct {
	client *http.Client
}

func NewHTTPImageLoader(client *http.Client) *HTTPImageLoader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPImageLoader{client: client}
}

func (l *HTTPImageLoader) Load(ctx context.Context, path string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrImageNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	b, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return imageFromBytes(b)
}

// S3GetObjectAPI is the slice of the S3 client the loader uses.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3ImageLoader struct {
	client S3GetObjectAPI
}

func NewS3ImageLoader(client S3GetObjectAPI) *S3ImageLoader {
	return &S3ImageLoader{client: client}
}

// NewS3Client builds a client for AWS or an S3 compatible endpoint. Empty
// credentials fall back to the default AWS chain.
func NewS3Client(ctx context.Context, region, endpoint, accessKey, secretKey string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Load reads s3://bucket/key.
func (l *S3ImageLoader) Load(ctx context.Context, path string) (*Image, error) {
	u, err := url.Parse(path)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an s3 url", ErrUnsupportedImage, path)
	}
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	b, err := readLimited(out.Body)
	if err != nil {
		return nil, err
	}
	return imageFromBytes(b)
}

// SchemeImageLoader routes by URL scheme. Missing loaders mean the scheme is unsupported.
type SchemeImageLoader struct {
	HTTP ImageLoader
	S3   ImageLoader
}

func (l SchemeImageLoader) Load(ctx context.Context, path string) (*Image, error) {
	switch {
	case strings.HasPrefix(path, "s3://") && l.S3 != nil:
		return l.S3.Load(ctx, path)
	case (strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://")) && l.HTTP != nil:
		return l.HTTP.Load(ctx, path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, path)
}
