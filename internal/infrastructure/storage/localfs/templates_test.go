package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

func TestTemplateRoundTripIsByteIdentical(t *testing.T) {
	store, err := NewTemplateStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewTemplateStore() error = %v", err)
	}
	ctx := context.Background()
	content := "Analyse:\r\n{combined_text}\n\t{{not a key}}\n\n✨ "

	if err := store.Save(ctx, "analysis_prompt.txt", content); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(ctx, "analysis_prompt.txt")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != content {
		t.Fatalf("expected byte-identical content, got %q", got)
	}
}

func TestTemplateSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewTemplateStore(dir)
	ctx := context.Background()

	_ = store.Save(ctx, "generation_prompt.txt", "first version that is longer")
	_ = store.Save(ctx, "generation_prompt.txt", "second")

	got, _ := store.Load(ctx, "generation_prompt.txt")
	if got != "second" {
		t.Fatalf("expected overwritten content, got %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestTemplateLoadMissing(t *testing.T) {
	store, _ := NewTemplateStore(t.TempDir())
	_, err := store.Load(context.Background(), "missing.txt")
	if !domain.IsKind(err, domain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewTemplateStore(filepath.Join(dir, "templates"))
	ctx := context.Background()

	for _, name := range []string{"../outside.txt", "/etc/passwd", "sub/dir.txt", ""} {
		if err := store.Save(ctx, name, "x"); !domain.IsKind(err, domain.ErrTemplateNotFound) {
			t.Fatalf("expected rejection for %q, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "outside.txt")); !os.IsNotExist(err) {
		t.Fatalf("traversal must not write outside the templates dir")
	}
}
