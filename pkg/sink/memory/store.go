// Package memory keeps artifacts in process.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/pkg/errors"
)

type object struct {
	data []byte
	info sink.Info
}

// Store implements sink.Store in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New returns an empty store.
func New() (s *Store) {
	s = &Store{objects: make(map[string]object)}
	return s
}

// Driver reports sink.DriverMemory.
func (s *Store) Driver() (d sink.Driver) {
	d = sink.DriverMemory
	return d
}

// Put stores a copy of r's content under key unless the key is taken.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (info sink.Info, err error) {
	key, err = sink.SanitizeKey(key)
	if err != nil {
		return info, err
	}

	var data []byte
	data, err = io.ReadAll(r)
	if err != nil {
		err = errors.Wrapf(err, "failed to read artifact %s", key)
		return info, err
	}

	if contentType == "" {
		contentType = sink.ContentType(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; exists {
		err = errors.Wrapf(sink.ErrExists, "%s", key)
		return info, err
	}

	info = sink.Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		URL:          "memory://" + key,
	}
	s.objects[key] = object{data: data, info: info}

	return info, err
}

// Get returns a reader over a stored artifact.
func (s *Store) Get(ctx context.Context, key string) (info sink.Info, rc io.ReadCloser, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		err = errors.Errorf("artifact not found: %s", key)
		return info, rc, err
	}

	info = obj.info
	rc = io.NopCloser(bytes.NewReader(obj.data))
	return info, rc, err
}

// List returns the artifacts whose keys start with prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) (infos []sink.Info, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, obj.info)
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return infos, err
}

// Bytes returns a stored artifact's content, or nil.
func (s *Store) Bytes(key string) (data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if obj, ok := s.objects[key]; ok {
		data = append([]byte(nil), obj.data...)
	}
	return data
}
