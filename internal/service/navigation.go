package service

import (
	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
)

var (
	viewDashboard   = dto.View{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"}
	viewUsers       = dto.View{Key: "users", Label: "Usuarios", Path: "/admin/users"}
	viewCourses     = dto.View{Key: "courses", Label: "Cursos", Path: "/courses"}
	viewEnrollments = dto.View{Key: "enrollments", Label: "Inscripciones", Path: "/admin/enrollments"}
	viewLogs        = dto.View{Key: "logs", Label: "Actividad", Path: "/admin/logs"}
	viewGrading     = dto.View{Key: "grading", Label: "Calificar", Path: "/grading"}
	viewGrades      = dto.View{Key: "grades", Label: "Calificaciones", Path: "/grades"}
	viewSettings    = dto.View{Key: "settings", Label: "Configuración", Path: "/settings"}
)

// ViewsForRole returns the ordered views a role may open. Unknown roles get
// no views. The returned slice is owned by the caller.
func ViewsForRole(role models.UserRole) []dto.View {
	var views []dto.View
	switch role {
	case models.RoleAdmin:
		views = []dto.View{viewDashboard, viewUsers, viewCourses, viewEnrollments, viewLogs, viewSettings}
	case models.RoleTeacher:
		views = []dto.View{viewDashboard, viewCourses, viewGrading, viewSettings}
	case models.RoleStudent:
		views = []dto.View{viewDashboard, viewCourses, viewGrades, viewSettings}
	default:
		views = []dto.View{}
	}
	return views
}
