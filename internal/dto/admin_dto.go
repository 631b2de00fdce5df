package dto

import "time"

// AdminStatsResponse aggregates platform-wide counters.
type AdminStatsResponse struct {
	TotalStudents    int64     `json:"total_students"`
	TotalTeachers    int64     `json:"total_teachers"`
	TotalAdmins      int64     `json:"total_admins"`
	TotalCourses     int64     `json:"total_courses"`
	TotalEnrollments int64     `json:"total_enrollments"`
	AverageProgress  int       `json:"average_progress"`
	GeneratedAt      time.Time `json:"generated_at"`
	CacheHit         bool      `json:"cache_hit"`
}

// CourseAnalyticsStudent is one enrolled student in a course analytics row.
type CourseAnalyticsStudent struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Progress   int       `json:"progress"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CourseAnalytics summarizes enrollment in one course.
type CourseAnalytics struct {
	ID              uint                     `json:"id"`
	Title           string                   `json:"title"`
	Teacher         UserLite                 `json:"teacher"`
	StudentCount    int                      `json:"student_count"`
	AverageProgress int                      `json:"average_progress"`
	Students        []CourseAnalyticsStudent `json:"students"`
}

// CourseAnalyticsResponse lists analytics for every course.
type CourseAnalyticsResponse struct {
	Courses     []CourseAnalytics `json:"courses"`
	GeneratedAt time.Time         `json:"generated_at"`
	CacheHit    bool              `json:"cache_hit"`
}
