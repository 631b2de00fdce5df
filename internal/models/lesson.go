package models

import (
	"time"

	"gorm.io/datatypes"
)

// LessonAttachment describes a file attached to a lesson.
type LessonAttachment struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Lesson is an ordered unit of course content. A lesson is an assignment
// when an Assignment row references it.
type Lesson struct {
	ID          uint                                   `gorm:"primaryKey" json:"id"`
	CourseID    uint                                   `gorm:"index;not null" json:"course_id"`
	Title       string                                 `gorm:"size:255;not null" json:"title"`
	Content     string                                 `gorm:"type:text" json:"content"`
	Position    int                                    `gorm:"not null;default:0" json:"order"`
	IsPublished bool                                   `gorm:"index;not null" json:"is_published"`
	Links       datatypes.JSONType[[]string]           `json:"links"`
	Attachments datatypes.JSONType[[]LessonAttachment] `json:"attachments"`
	CreatedAt   time.Time                              `json:"created_at"`
	UpdatedAt   time.Time                              `json:"updated_at"`
	Assignment  *Assignment                            `gorm:"foreignKey:LessonID" json:"assignment,omitempty"`
}

// IsAssignment reports whether the lesson carries graded work.
func (l Lesson) IsAssignment() bool {
	return l.Assignment != nil && l.Assignment.ID != 0
}

// LinkList returns the stored external links.
func (l Lesson) LinkList() []string {
	links := l.Links.Data()
	if links == nil {
		return []string{}
	}
	return links
}

// AttachmentList returns the stored attachment metadata.
func (l Lesson) AttachmentList() []LessonAttachment {
	attachments := l.Attachments.Data()
	if attachments == nil {
		return []LessonAttachment{}
	}
	return attachments
}
