package dto

import "github.com/prajaktamali15/e-learning-platform/internal/entity"

type UploadAttachmentResponse struct {
	ID       uint   `json:"id"`
	Kind     string `json:"kind"`
	FileURL  string `json:"fileUrl"`
	FileType string `json:"fileType"`
	Size     int64  `json:"size"`
}

func NewUploadAttachmentResponse(a *entity.Attachment) UploadAttachmentResponse {
	return UploadAttachmentResponse{
		ID:       a.ID,
		Kind:     a.Kind,
		FileURL:  a.FileURL,
		FileType: a.FileType,
		Size:     a.Size,
	}
}
