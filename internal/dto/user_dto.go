package dto

// ProfileUpdateRequest updates the caller's own profile fields.
type ProfileUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// PasswordChangeRequest changes the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// AdminUserUpdateRequest lets an admin edit any account.
type AdminUserUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Role        *string `json:"role" validate:"omitempty,oneof=student teacher admin"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

// PasswordResetRequest sets a new password for another account.
type PasswordResetRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserListFilter narrows admin account listings.
type UserListFilter struct {
	Role     string `query:"role" validate:"omitempty,oneof=student teacher admin"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// PaginationMeta describes the page returned by a list endpoint.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta computes page counts.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: totalPages}
}
