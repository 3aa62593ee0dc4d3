package archive

import (
	"testing"
)

func TestNewS3(t *testing.T) {
	s, err := NewS3(S3Config{
		Bucket:    "runs",
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "archive/",
	})
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}
	if s.bucket != "runs" {
		t.Errorf("bucket = %s, want runs", s.bucket)
	}
	if s.prefix != "archive" {
		t.Errorf("prefix = %s, want trailing slash trimmed", s.prefix)
	}
	if s.key("runs/a.json") != "archive/runs/a.json" {
		t.Errorf("key() = %s", s.key("runs/a.json"))
	}
}

func TestS3Key_NoPrefix(t *testing.T) {
	s := &S3Storage{bucket: "b"}
	if s.key("x.json") != "x.json" {
		t.Errorf("key() = %s, want x.json", s.key("x.json"))
	}
}
