package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Statistics  *StatisticsHandler
	Activity    *ActivityHandler
	Imports     *ImportHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the registry API on router. Ops endpoints live at the root.
func RegisterRoutes(router *gin.Engine, prefix string, h Handlers) {
	if h.Metrics != nil {
		router.GET("/health", h.Metrics.Health)
		router.GET("/ready", h.Metrics.Ready)
		router.GET("/metrics", h.Metrics.Prometheus)
	}

	api := router.Group(prefix)

	if h.Students != nil {
		students := api.Group("/students")
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
		students.GET("/:id/courses", h.Students.Courses)
	}

	if h.Courses != nil {
		courses := api.Group("/courses")
		courses.GET("", h.Courses.List)
		courses.POST("", h.Courses.Create)
		courses.GET("/:code", h.Courses.Get)
		courses.PATCH("/:code", h.Courses.Update)
		courses.DELETE("/:code", h.Courses.Delete)
		courses.GET("/:code/students", h.Courses.Students)
	}

	if h.Enrollments != nil {
		api.POST("/enrollments", h.Enrollments.Enroll)
		api.DELETE("/enrollments/:studentId/:code", h.Enrollments.Drop)
		api.GET("/instructors/:name/students", h.Enrollments.ByInstructor)
	}

	if h.Statistics != nil {
		api.GET("/statistics", h.Statistics.Get)
		api.GET("/statistics/system", h.Statistics.System)
	}

	if h.Activity != nil {
		api.GET("/activities", h.Activity.List)
		api.GET("/activities/archive", h.Activity.Archive)
	}

	if h.Imports != nil {
		api.POST("/imports", h.Imports.Upload)
	}

	if h.Exports != nil {
		api.POST("/exports", h.Exports.Generate)
		api.GET("/exports/download", h.Exports.Download)
	}
}
