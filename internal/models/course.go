package models

import "time"

// Course categories.
const (
	CategoryBackend     = "Backend"
	CategoryFrontend    = "Frontend"
	CategoryData        = "Data"
	CategorySecurity    = "Security"
	CategoryDevOps      = "DevOps"
	CategoryMobile      = "Mobile"
	CategoryDevelopment = "Development"
	CategoryBusiness    = "Business"
	CategoryDesign      = "Design"
	CategoryMarketing   = "Marketing"
	CategoryOther       = "Other"
)

// Course levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a teacher-owned collection of lessons, assignments and quizzes.
type Course struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:100;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	TeacherID     uint      `gorm:"index;not null" json:"teacher_id"`
	IsPublic      bool      `gorm:"index;not null" json:"is_public"`
	EnrollmentKey string    `gorm:"size:128" json:"-"`
	Category      string    `gorm:"size:32;index;not null" json:"category"`
	Level         string    `gorm:"size:32;index;not null" json:"level"`
	Duration      string    `gorm:"size:64" json:"duration"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Teacher       User      `gorm:"foreignKey:TeacherID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
}

// KeyMatches reports whether key unlocks enrollment. Public courses and
// private courses without a stored key accept any key.
func (c Course) KeyMatches(key string) bool {
	if c.IsPublic || c.EnrollmentKey == "" {
		return true
	}
	return c.EnrollmentKey == key
}

// IsOwnedBy reports whether userID is the owning teacher.
func (c Course) IsOwnedBy(userID uint) bool {
	return userID != 0 && c.TeacherID == userID
}
