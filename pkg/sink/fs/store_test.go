package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikogura/resume-randomizer/pkg/sink"
	"github.com/pkg/errors"
)

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "out")

	store, err := New(root)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	info, err := store.Put(ctx, "batch1/resume_1.doc", strings.NewReader("Hello"), "")
	if err != nil {
		t.Fatalf("Failed to put: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("Expected size 5, got %d", info.Size)
	}
	if info.URL != filepath.Join(root, "batch1", "resume_1.doc") {
		t.Errorf("Expected file path URL, got %s", info.URL)
	}

	_, rc, err := store.Get(ctx, "batch1/resume_1.doc")
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if string(data) != "Hello" {
		t.Errorf("Expected 'Hello', got '%s'", string(data))
	}
}

func TestPutCreateOnly(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.Put(ctx, "r.txt", strings.NewReader("first"), "")
	if err != nil {
		t.Fatalf("Failed to put: %v", err)
	}

	_, err = store.Put(ctx, "r.txt", strings.NewReader("second"), "")
	if !errors.Is(err, sink.ErrExists) {
		t.Errorf("Expected ErrExists, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.root, "r.txt"))
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("Expected original content kept, got '%s'", string(data))
	}
}

func TestPutRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.Put(context.Background(), "../escape.txt", strings.NewReader("x"), "")
	if err == nil {
		t.Error("Expected error for traversal key, got nil")
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	for _, key := range []string{"r_1.doc", "r_1.csv", "codebook.txt"} {
		_, err = store.Put(ctx, key, strings.NewReader(key), "")
		if err != nil {
			t.Fatalf("Failed to put %s: %v", key, err)
		}
	}

	infos, err := store.List(ctx, "r_")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(infos))
	}
	if infos[0].Key != "r_1.csv" || infos[0].ContentType != "text/csv" {
		t.Errorf("Expected r_1.csv as text/csv first, got %+v", infos[0])
	}
	if store.Driver() != sink.DriverFilesystem {
		t.Errorf("Expected fs driver, got %s", store.Driver())
	}
}
