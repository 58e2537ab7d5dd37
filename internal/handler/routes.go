package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-virtual-api/internal/middleware"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	"github.com/noah-isme/campus-virtual-api/internal/service"
)

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Auth        *AuthHandler
	Google      *GoogleHandler
	Dashboard   *DashboardHandler
	Users       *UserHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Logs        *SystemLogHandler
	Assignments *AssignmentHandler
	Exams       *ExamHandler
	Grading     *GradingHandler
	Grades      *GradeHandler
	Uploads     *UploadHandler
	Gradebook   *GradebookHandler
	Metrics     *MetricsHandler
}

// Register mounts the API under prefix and the probes at the root.
func Register(r *gin.Engine, prefix string, h Handlers, sessions *service.SessionService, cookieName string) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/google", h.Google.Start)
	api.GET("/auth/google/callback", h.Google.Callback)
	api.GET("/files/:token", h.Uploads.Download)
	api.POST("/auth/logout", middleware.OptionalSession(sessions, cookieName), h.Auth.Logout)
	api.GET("/me/grades", middleware.OptionalSession(sessions, cookieName), h.Grades.Mine)

	authed := api.Group("", middleware.Session(sessions, cookieName), middleware.UUIDParams("id"))
	authed.GET("/auth/me", h.Auth.Me)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)
	authed.PATCH("/me/profile", h.Auth.UpdateProfile)
	authed.GET("/me/navigation", h.Auth.Navigation)
	authed.GET("/dashboard", h.Dashboard.Get)
	authed.GET("/courses", h.Courses.List)
	authed.GET("/courses/:id", h.Courses.Detail)
	authed.POST("/uploads", h.Uploads.Upload)

	student := authed.Group("", middleware.RequireRoles(models.RoleStudent))
	student.PUT("/assignments/:id/submission", h.Assignments.Submit)
	student.GET("/exams/:id", h.Exams.Take)
	student.POST("/exams/:id/submit", h.Exams.Submit)

	staff := authed.Group("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	staff.POST("/courses/:id/materials", h.Courses.AddMaterial)
	staff.POST("/courses/:id/assignments", h.Assignments.Create)
	staff.POST("/courses/:id/exams", h.Exams.Create)
	staff.GET("/courses/:id/enrollments", h.Enrollments.ListByCourse)
	staff.GET("/courses/:id/submissions", h.Grading.CourseSubmissions)
	staff.GET("/courses/:id/gradebook", h.Gradebook.Export)
	staff.PATCH("/enrollments/:id/progress", h.Enrollments.UpdateProgress)
	staff.GET("/submissions/:id", h.Grading.Submission)
	staff.PUT("/submissions/:id/grade", h.Grading.GradeSubmission)
	staff.GET("/exam-results/:id", h.Grading.Result)
	staff.PUT("/exam-results/:id/grade", h.Grading.GradeResult)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", h.Users.List)
	admin.POST("/users", h.Users.Create)
	admin.GET("/users/:id", h.Users.Get)
	admin.PUT("/users/:id", h.Users.Update)
	admin.DELETE("/users/:id", h.Users.Delete)
	admin.POST("/courses", h.Courses.Create)
	admin.GET("/courses/:id", h.Courses.Get)
	admin.PUT("/courses/:id", h.Courses.Update)
	admin.DELETE("/courses/:id", h.Courses.Delete)
	admin.POST("/enrollments", h.Enrollments.Enroll)
	admin.DELETE("/enrollments/:id", h.Enrollments.Unenroll)
	admin.GET("/logs", h.Logs.List)
}
