// Package storage archives generated export files in a Supabase bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"emlak-scraper/internal/logger"

	"github.com/antoineross/supabase-go"
	storage_go "github.com/supabase-community/storage-go"
)

// Archiver stores a finished artifact and returns its object path.
type Archiver interface {
	Archive(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type Supabase struct {
	client *supabase.Client
	bucket string
	prefix string
	log    *logger.Logger
}

// NewSupabase connects to the storage API of a Supabase project. Objects are
// written under prefix inside bucket.
func NewSupabase(url, serviceKey, bucket, prefix string) (*Supabase, error) {
	if url == "" || serviceKey == "" || bucket == "" {
		return nil, fmt.Errorf("supabase storage requires url, service key and bucket")
	}
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	return &Supabase{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), log: logger.New("Storage")}, nil
}

// Archive uploads data, replacing any previous object with the same name.
func (s *Supabase) Archive(_ context.Context, name, contentType string, data []byte) (string, error) {
	objectPath := name
	if s.prefix != "" {
		objectPath = path.Join(s.prefix, name)
	}
	upsert := true
	_, err := s.client.Storage.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	s.log.LogDebugf("archived %s (%d bytes) to bucket %s", objectPath, len(data), s.bucket)
	return objectPath, nil
}
