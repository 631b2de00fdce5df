package service

import "github.com/noah-isme/gema-lms-api/internal/models"

// Actor identifies the authenticated caller. The role comes from the access
// token and is not re-read from storage, so a role change applies after the
// next login.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the caller is an administrator.
func (a Actor) IsAdmin() bool {
	return models.NormalizeRole(a.Role) == models.RoleAdmin
}

// IsTeacher reports whether the caller is a teacher.
func (a Actor) IsTeacher() bool {
	return models.NormalizeRole(a.Role) == models.RoleTeacher
}

// IsStudent reports whether the caller is a student.
func (a Actor) IsStudent() bool {
	return models.NormalizeRole(a.Role) == models.RoleStudent
}

// CanManage reports whether the caller owns course or is an administrator.
func (a Actor) CanManage(course models.Course) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsTeacher() && course.IsOwnedBy(a.ID)
}
