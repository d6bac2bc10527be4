package certificate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/pkg/storage"
)

func TestRender(t *testing.T) {
	issued := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	pdf, err := Render("Zoë Student", "Distributed Systems", issued)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", pdf[:8])
	}

	again, err := Render("Zoë Student", "Distributed Systems", issued)
	if err != nil {
		t.Fatalf("render again: %v", err)
	}
	if !bytes.Equal(pdf, again) {
		t.Fatalf("render should be deterministic for equal input")
	}
}

func TestIssueWritesDeterministicFile(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewLocalStorage(root, "/certificates")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	svc := NewCertificateService(files)

	studentID, courseID := uuid.New(), uuid.New()
	issued := time.Now()

	url, err := svc.Issue(context.Background(), studentID, courseID, "Ada", "Go 101", issued)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	want := "/certificates/" + studentID.String() + "-" + courseID.String() + ".pdf"
	if url != want {
		t.Fatalf("url: want=%s got=%s", want, url)
	}

	// A second issue overwrites the same file.
	if _, err := svc.Issue(context.Background(), studentID, courseID, "Ada", "Go 101", issued); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("files on disk: want=1 got=%d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(root, FileName(studentID, courseID))); err != nil {
		t.Fatalf("certificate missing: %v", err)
	}
}
