package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestKey(t *testing.T) {
	at := time.Date(2026, 10, 17, 10, 15, 0, 123_000_000, time.UTC)
	if got := Key("/data/bouquets.xlsx", at); got != "bouquets/20261017T101500.123Z.xlsx" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestFSSinkWritesUnderDir(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFSSink(dir)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.Put(context.Background(), "bouquets/a.xlsx", strings.NewReader("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "bouquets", "a.xlsx"))
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected backup content %q err=%v", data, err)
	}

	// Keys cannot escape the directory.
	if err := sink.Put(context.Background(), "../../escape.xlsx", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.xlsx")); err != nil {
		t.Fatalf("expected escape attempt to land inside dir: %v", err)
	}
}

type fakeS3 struct {
	bucket, key, contentType, body string
	err                            error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.bucket, f.key, f.contentType, f.body = aws.ToString(in.Bucket), aws.ToString(in.Key), aws.ToString(in.ContentType), string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkPut(t *testing.T) {
	fake := &fakeS3{}
	sink := NewS3Sink(fake, "crm-backups", "shop-1")
	if err := sink.Put(context.Background(), "bouquets/a.xlsx", strings.NewReader("wb")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if fake.bucket != "crm-backups" || fake.key != "shop-1/bouquets/a.xlsx" || fake.body != "wb" || fake.contentType != workbookContentType {
		t.Fatalf("unexpected upload %+v", fake)
	}

	fake.err = errors.New("denied")
	if err := sink.Put(context.Background(), "k", strings.NewReader("")); !errors.Is(err, fake.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewS3SinkFromConfigRequiresBucket(t *testing.T) {
	if _, err := NewS3SinkFromConfig(context.Background(), S3Config{}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestNewS3SinkFromConfigStaticKeys(t *testing.T) {
	sink, err := NewS3SinkFromConfig(context.Background(), S3Config{
		Bucket:          "crm-backups",
		Region:          "eu-central-1",
		Endpoint:        "http://127.0.0.1:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if sink.bucket != "crm-backups" {
		t.Fatalf("unexpected bucket %q", sink.bucket)
	}
}
