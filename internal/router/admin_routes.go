package router

import (
	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/handler"
	"github.com/minbok/shuttle-reservation/internal/middleware"
	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// RegisterOperations registers the operations-admin surface: catalog
// CRUD, the boarding scanner and the manual reward sweep.
func RegisterOperations(
	e *echo.Echo,
	cat *handler.CatalogHandler,
	board *handler.BoardingHandler,
	rw *handler.RewardHandler,
	users *repository.UserRepo,
	jwtSecret string,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOperationsAdmin),
		middleware.RequireApproved(users),
	)
	g.POST("/boardings", board.Record)
	g.POST("/admin/rewards/run", rw.RunEngine)

	g.POST("/admin/routes", cat.CreateRoute)
	g.PUT("/admin/routes/:id", cat.UpdateRoute)
	g.DELETE("/admin/routes/:id", cat.DeleteRoute)
	g.PUT("/admin/routes/:id/stops", cat.ReplaceStops)
	g.GET("/admin/routes/:id/schedules", cat.ListSchedules)
	g.POST("/admin/routes/:id/schedules", cat.CreateSchedule)
	g.PATCH("/admin/schedules/:id/active", cat.SetScheduleActive)
	g.DELETE("/admin/schedules/:id", cat.DeleteSchedule)
}

// RegisterDirectory registers company and user administration.  Both
// admin roles may enter; the handler narrows company admins to their
// own company, and the role/company/company-CRUD endpoints get an extra
// operations-only gate.
func RegisterDirectory(
	e *echo.Echo,
	dir *handler.DirectoryHandler,
	users *repository.UserRepo,
	jwtSecret string,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCompanyAdmin, model.RoleOperationsAdmin),
		middleware.RequireApproved(users),
	)
	g.GET("/admin/users", dir.ListUsers)
	g.POST("/admin/users/:id/approve", dir.ApproveUser)
	g.GET("/admin/companies", dir.ListCompanies)

	ops := g.Group("", middleware.RequireRole(model.RoleOperationsAdmin))
	ops.POST("/admin/companies", dir.CreateCompany)
	ops.PUT("/admin/companies/:id", dir.RenameCompany)
	ops.DELETE("/admin/companies/:id", dir.DeleteCompany)
	ops.PUT("/admin/users/:id/role", dir.SetUserRole)
	ops.PUT("/admin/users/:id/company", dir.SetUserCompany)
}
