// Package archive uploads the canonical pipeline outputs to object storage
// so training jobs elsewhere can pull them. Unconfigured deployments stay
// local-only.
package archive

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/wadmes/VLSI-LLM/config"
)

type Client struct {
	bucket     *oss.Bucket
	bucketName string
}

// NewClient connects to OSS, or returns (nil, nil) when the config leaves the
// endpoint empty so callers can treat archival as optional.
func NewClient(cfg *config.OSSConfig) (*Client, error) {
	if cfg == nil || cfg.Endpoint == "" || cfg.AccessKeyID == "" {
		return nil, nil
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	return &Client{bucket: bucket, bucketName: cfg.BucketName}, nil
}

// UploadFile uploads one file under objectKey.
func (c *Client) UploadFile(objectKey, path string) error {
	if c == nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	contentType := "application/octet-stream"
	switch filepath.Ext(path) {
	case ".json":
		contentType = "application/json"
	case ".csv":
		contentType = "text/csv"
	case ".v", ".sv", ".log", ".txt":
		contentType = "text/plain"
	}
	if err := c.bucket.PutObject(objectKey, bytes.NewReader(data), oss.ContentType(contentType)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return nil
}

// UploadDir uploads every regular file under dir with the given key prefix,
// logging and skipping per-file failures.
func (c *Client) UploadDir(prefix, dir string) error {
	if c == nil {
		return nil
	}
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(prefix, "/") + "/" + filepath.ToSlash(rel)
		if err := c.UploadFile(key, path); err != nil {
			log.Printf("Archive: %v", err)
		}
		return nil
	})
}
