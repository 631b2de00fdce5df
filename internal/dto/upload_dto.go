package dto

import "time"

// UploadResponse describes a stored file.
type UploadResponse struct {
	FileURL   string    `json:"file_url"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
