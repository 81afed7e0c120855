package printing

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveDataTarget_ExistingPath(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "ticket.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create test document: %v", err)
	}

	path, cleanup, err := resolveDataTarget(PrintDataRequest{
		Data:        doc,
		ContentType: "pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != doc {
		t.Errorf("expected passthrough path %s, got %s", doc, path)
	}

	// Cleanup must not remove a caller-owned file
	cleanup()
	if _, err := os.Stat(doc); err != nil {
		t.Errorf("existing document was removed: %v", err)
	}
}

func TestResolveDataTarget_Base64(t *testing.T) {
	content := []byte("%PDF-1.4 fake document")
	encoded := base64.StdEncoding.EncodeToString(content)

	path, cleanup, err := resolveDataTarget(PrintDataRequest{
		Data:        encoded,
		ContentType: "pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(path, ".pdf") {
		t.Errorf("expected .pdf suffix, got %s", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp document: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("expected decoded content %q, got %q", content, got)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected temp document to be removed: %s", path)
	}
}

func TestResolveDataTarget_RawTextFallback(t *testing.T) {
	// Not valid base64, so the bytes are written as-is
	raw := "RECEIPT #42\ntotal: 9.99!"

	path, cleanup, err := resolveDataTarget(PrintDataRequest{
		Data:        raw,
		ContentType: "txt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp document: %v", err)
	}
	if string(got) != raw {
		t.Errorf("expected raw content %q, got %q", raw, got)
	}
}

func TestResolveDataTarget_NormalizesSuffix(t *testing.T) {
	path, cleanup, err := resolveDataTarget(PrintDataRequest{
		Data:        base64.StdEncoding.EncodeToString([]byte("x")),
		ContentType: ".PDF",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if !strings.HasSuffix(path, ".pdf") {
		t.Errorf("expected normalized .pdf suffix, got %s", path)
	}
}
