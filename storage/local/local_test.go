package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/storage"
)

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	if err := s.Upload(ctx, "audio/u1/d1/a.mp3", strings.NewReader("ID3")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	ok, err := s.Exists(ctx, "audio/u1/d1/a.mp3")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	rc, err := s.Download(ctx, "audio/u1/d1/a.mp3")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "ID3" {
		t.Errorf("content = %q", data)
	}

	if err := s.Delete(ctx, "audio/u1/d1/a.mp3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "audio/u1/d1/a.mp3"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
	if _, err := s.Download(ctx, "audio/u1/d1/a.mp3"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	base := filepath.Join(root, "base")
	s, err := NewStorage(base)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	if err := s.Upload(ctx, "../../escape.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err == nil {
		t.Fatal("file escaped the base directory")
	}
	if _, err := os.Stat(filepath.Join(base, "escape.txt")); err != nil {
		t.Errorf("expected file inside base: %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	for _, p := range []string{"audio/u1/b.wav", "audio/u1/a.mp3", "audio/u2/c.ogg"} {
		if err := s.Upload(ctx, p, strings.NewReader("x")); err != nil {
			t.Fatalf("Upload %s: %v", p, err)
		}
	}

	files, err := s.List(ctx, "audio/u1/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 || files[0].Path != "audio/u1/a.mp3" || files[1].Path != "audio/u1/b.wav" {
		t.Errorf("unexpected listing %+v", files)
	}

	empty, err := s.List(ctx, "audio/none/")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty listing, got %v, %v", empty, err)
	}
}

func TestFactoryRegistered(t *testing.T) {
	cfg := storage.Config{Provider: storage.ProviderLocal, Local: storage.LocalConfig{BasePath: t.TempDir()}}
	s, err := storage.New(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}
