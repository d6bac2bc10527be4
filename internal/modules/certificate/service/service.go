package certificate

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/pkg/storage"
)

type CertificateService interface {
	// Issue renders and stores the certificate for a student/course pair and
	// returns its public URL. The file name is deterministic, so a retry
	// overwrites rather than duplicates.
	Issue(ctx context.Context, studentID, courseID uuid.UUID, studentName, courseTitle string, issuedAt time.Time) (string, error)
}

type certificateService struct {
	files storage.FileStorage
}

func NewCertificateService(files storage.FileStorage) CertificateService {
	return &certificateService{files: files}
}

func FileName(studentID, courseID uuid.UUID) string {
	return fmt.Sprintf("%s-%s.pdf", studentID, courseID)
}

func (s *certificateService) Issue(ctx context.Context, studentID, courseID uuid.UUID, studentName, courseTitle string, issuedAt time.Time) (string, error) {
	pdf, err := Render(studentName, courseTitle, issuedAt)
	if err != nil {
		return "", err
	}

	url, err := s.files.Upload(ctx, bytes.NewReader(pdf), "", FileName(studentID, courseID))
	if err != nil {
		return "", fmt.Errorf("failed to store certificate: %w", err)
	}
	return url, nil
}
