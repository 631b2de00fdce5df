package models

import "time"

// UploadRecord stores metadata about uploaded files.
type UploadRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"index" json:"user_id"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	Checksum     string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
}
