// Package fs stores artifacts as files under a root directory.
package fs

import (
	"context"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/pkg/errors"
)

// Store implements sink.Store on the local filesystem.
type Store struct {
	root string
}

// New returns a store rooted at root, creating the directory if needed.
func New(root string) (s *Store, err error) {
	if root == "" {
		root = "."
	}

	err = os.MkdirAll(root, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", root)
		return s, err
	}

	s = &Store{root: root}
	return s, err
}

// Driver reports sink.DriverFilesystem.
func (s *Store) Driver() (d sink.Driver) {
	d = sink.DriverFilesystem
	return d
}

func (s *Store) pathFor(key string) (p string, err error) {
	var clean string
	clean, err = sink.SanitizeKey(key)
	if err != nil {
		return p, err
	}
	p = filepath.Join(s.root, filepath.FromSlash(clean))
	return p, err
}

// Put writes a new file; an existing file is left alone and sink.ErrExists returned.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (info sink.Info, err error) {
	var p string
	p, err = s.pathFor(key)
	if err != nil {
		return info, err
	}

	err = os.MkdirAll(filepath.Dir(p), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", key)
		return info, err
	}

	var f *os.File
	f, err = os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			err = errors.Wrapf(sink.ErrExists, "%s", p)
			return info, err
		}
		err = errors.Wrapf(err, "failed to create %s", p)
		return info, err
	}

	var size int64
	size, err = io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(p)
		err = errors.Wrapf(err, "failed to write %s", p)
		return info, err
	}

	info, err = s.stat(key, p)
	if err != nil {
		return info, err
	}
	if contentType != "" {
		info.ContentType = contentType
	}
	info.Size = size

	return info, err
}

// Get opens a stored file.
func (s *Store) Get(ctx context.Context, key string) (info sink.Info, rc io.ReadCloser, err error) {
	var p string
	p, err = s.pathFor(key)
	if err != nil {
		return info, rc, err
	}

	info, err = s.stat(key, p)
	if err != nil {
		return info, rc, err
	}

	var f *os.File
	f, err = os.Open(p)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", p)
		return info, rc, err
	}
	rc = f

	return info, rc, err
}

// List walks the root and returns every file whose key starts with prefix.
func (s *Store) List(ctx context.Context, prefix string) (infos []sink.Info, err error) {
	err = filepath.WalkDir(s.root, func(p string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, statErr := s.stat(key, p)
		if statErr != nil {
			return statErr
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to list %s", s.root)
		return infos, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return infos, err
}

func (s *Store) stat(key, p string) (info sink.Info, err error) {
	var fi os.FileInfo
	fi, err = os.Stat(p)
	if err != nil {
		err = errors.Wrapf(err, "failed to stat %s", p)
		return info, err
	}

	info = sink.Info{
		Key:          key,
		Size:         fi.Size(),
		ContentType:  sink.ContentType(key),
		LastModified: fi.ModTime().UTC(),
		URL:          p,
	}
	return info, err
}
