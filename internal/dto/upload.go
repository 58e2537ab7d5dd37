package dto

import "time"

// UploadResult describes a stored file and the signed URL to fetch it.
type UploadResult struct {
	FileID      string    `json:"fileId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
