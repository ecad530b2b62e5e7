package models

import "time"

// Statistics aggregates registry-wide counters.
type Statistics struct {
	TotalStudents               int      `json:"total_students"`
	TotalCourses                int      `json:"total_courses"`
	TotalEnrollments            int      `json:"total_enrollments"`
	TotalActivities             int      `json:"total_activities"`
	AverageEnrollmentsPerCourse *float64 `json:"average_enrollments_per_course,omitempty"`
}

// Pagination describes paging metadata returned with list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// SystemMetrics is a point-in-time summary of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	EnrollmentsTotal         uint64    `json:"enrollments_total"`
	WaitlistedTotal          uint64    `json:"waitlisted_total"`
	PromotionsTotal          uint64    `json:"promotions_total"`
	ArchivedTotal            uint64    `json:"archived_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
