package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/minbok/shuttle-reservation/internal/model"
	"github.com/minbok/shuttle-reservation/internal/repository"
)

// DirectoryHandler serves company and user administration.  Company
// admins see only their own company; operations admins see everything.
type DirectoryHandler struct {
	CompanyRepo *repository.CompanyRepo
	UserRepo    *repository.UserRepo
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(companies *repository.CompanyRepo, users *repository.UserRepo) *DirectoryHandler {
	if companies == nil || users == nil {
		panic("nil repository passed to NewDirectoryHandler")
	}
	return &DirectoryHandler{CompanyRepo: companies, UserRepo: users}
}

// callerScope returns the caller and, for company admins, the company
// the request is confined to.  Operations admins get a nil scope.
func callerScope(c echo.Context) (*model.User, *uint64, bool) {
	u, ok := c.Get("current_user").(*model.User)
	if !ok || u == nil {
		return nil, nil, false
	}
	if u.Role == model.RoleOperationsAdmin {
		return u, nil, true
	}
	if u.Role == model.RoleCompanyAdmin && u.CompanyID != nil {
		return u, u.CompanyID, true
	}
	return nil, nil, false
}

// ListCompanies handles GET /v1/admin/companies.
func (h *DirectoryHandler) ListCompanies(c echo.Context) error {
	items, err := h.CompanyRepo.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"companies": items})
}

// CreateCompany handles POST /v1/admin/companies.
func (h *DirectoryHandler) CreateCompany(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	co := &model.Company{Name: body.Name}
	if err := h.CompanyRepo.Create(c.Request().Context(), co); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": co.ID, "name": co.Name})
}

// RenameCompany handles PUT /v1/admin/companies/:id.
func (h *DirectoryHandler) RenameCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company id"})
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := h.CompanyRepo.Rename(c.Request().Context(), id, body.Name); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "name": body.Name})
}

// DeleteCompany handles DELETE /v1/admin/companies/:id.  Companies with
// members answer 409.
func (h *DirectoryHandler) DeleteCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company id"})
	}
	if err := h.CompanyRepo.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type userView struct {
	ID         uint64  `json:"id"`
	Email      *string `json:"email,omitempty"`
	FullName   *string `json:"full_name,omitempty"`
	Role       string  `json:"role"`
	CompanyID  *uint64 `json:"company_id,omitempty"`
	IsApproved bool    `json:"is_approved"`
}

// ListUsers handles GET /v1/admin/users.  Company admins are pinned to
// their own company regardless of the query; ?pending=true narrows to
// accounts awaiting approval.
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	_, scope, ok := callerScope(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if scope == nil {
		if q := c.QueryParam("company_id"); q != "" {
			id, err := strconv.ParseUint(q, 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company_id"})
			}
			scope = &id
		}
	}
	pendingOnly := c.QueryParam("pending") == "true"

	items, err := h.UserRepo.List(c.Request().Context(), scope, pendingOnly)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]userView, 0, len(items))
	for _, u := range items {
		out = append(out, userView{
			ID: u.ID, Email: u.Email, FullName: u.FullName,
			Role: u.Role, CompanyID: u.CompanyID, IsApproved: u.IsApproved,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// ApproveUser handles POST /v1/admin/users/:id/approve.  Company admins
// may only approve members of their own company.
func (h *DirectoryHandler) ApproveUser(c echo.Context) error {
	_, scope, ok := callerScope(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx := c.Request().Context()
	if scope != nil {
		target, err := h.UserRepo.GetByID(ctx, id)
		if err != nil {
			return writeError(c, err)
		}
		if target.CompanyID == nil || *target.CompanyID != *scope {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "user is not in your company"})
		}
	}
	if err := h.UserRepo.Approve(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_approved": true})
}

// SetUserRole handles PUT /v1/admin/users/:id/role.  Operations admins
// only; the role must be one of the known constants.
func (h *DirectoryHandler) SetUserRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch body.Role {
	case model.RoleEmployee, model.RoleCompanyAdmin, model.RoleOperationsAdmin:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if err := h.UserRepo.SetRole(c.Request().Context(), id, body.Role); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": body.Role})
}

// SetUserCompany handles PUT /v1/admin/users/:id/company.  A null
// company_id clears membership.
func (h *DirectoryHandler) SetUserCompany(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		CompanyID *uint64 `json:"company_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.UserRepo.SetCompany(c.Request().Context(), id, body.CompanyID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "company_id": body.CompanyID})
}
