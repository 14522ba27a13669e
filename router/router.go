// Package router 管理用HTTP APIを提供します
package router

import (
	"errors"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
	"github.com/traPtitech/rolegate/service/rolegate"
)

// Router 管理用APIのルータ
type Router struct {
	repo   repository.Repository
	engine *rolegate.Engine
	logger *zap.Logger
}

// NewRouter ルータを生成します
func NewRouter(repo repository.Repository, engine *rolegate.Engine, logger *zap.Logger) *Router {
	return &Router{
		repo:   repo,
		engine: engine,
		logger: logger.Named("router"),
	}
}

// Setup APIルートをechoに登録します
func (r *Router) Setup(e *echo.Echo) {
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.GET("/roles", r.GetRoles)
	api.GET("/roles/selectable", r.GetSelectableRoles)
	api.GET("/roles/:name/permissions", r.GetRolePermissions)
	api.GET("/roles/:name/members", r.GetRoleMembers)
	api.GET("/users/:id/role", r.GetUserRole)
	api.PUT("/users/:id/role", r.PutUserRole)
	api.POST("/users/:id/role", r.PostUserRole)
}

type roleResponse struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Extends []string `json:"extends"`
}

func formatRole(role *model.Role) roleResponse {
	return roleResponse{
		Name:    role.Name,
		Title:   role.Title,
		Extends: role.ExtendsList(),
	}
}

func formatRoles(roles []*model.Role) []roleResponse {
	result := make([]roleResponse, len(roles))
	for i, role := range roles {
		result[i] = formatRole(role)
	}
	return result
}

// GetRoles GET /api/v1/roles
func (r *Router) GetRoles(c echo.Context) error {
	roles, err := r.repo.GetAllRoles()
	if err != nil {
		return r.internalError(err)
	}
	return c.JSON(http.StatusOK, formatRoles(roles))
}

// GetSelectableRoles GET /api/v1/roles/selectable
func (r *Router) GetSelectableRoles(c echo.Context) error {
	roles, err := r.engine.Selectable()
	if err != nil {
		return r.internalError(err)
	}
	return c.JSON(http.StatusOK, formatRoles(roles))
}

// GetRolePermissions GET /api/v1/roles/:name/permissions
//
// 継承を解決したフラット化済みのパーミッションツリーを返します。
func (r *Router) GetRolePermissions(c echo.Context) error {
	role, err := r.repo.GetRoleByName(c.Param("name"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		return r.internalError(err)
	}
	tree, err := r.engine.Permissions(role)
	if err != nil {
		if errors.Is(err, rolegate.ErrExtendsCycle) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return r.internalError(err)
	}
	return c.JSON(http.StatusOK, tree)
}

// GetRoleMembers GET /api/v1/roles/:name/members
func (r *Router) GetRoleMembers(c echo.Context) error {
	members, err := r.engine.RoleMembers(c.Param("name"))
	if err != nil {
		if errors.Is(err, repository.ErrReserved) {
			return echo.NewHTTPError(http.StatusBadRequest, "members of a reserved role cannot be listed")
		}
		return r.internalError(err)
	}
	return c.JSON(http.StatusOK, members)
}

type userRoleResponse struct {
	Role string `json:"role"`
}

// GetUserRole GET /api/v1/users/:id/role
//
// 明示的な割り当てが無い場合はユーザー属性から計算されたロールを返します。
func (r *Router) GetUserRole(c echo.Context) error {
	user, err := r.userFromRequest(c)
	if err != nil {
		return err
	}
	role, err := r.engine.RoleOf(user)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		return r.internalError(err)
	}
	return c.JSON(http.StatusOK, userRoleResponse{Role: role.Name})
}

type putUserRoleRequest struct {
	Role string `json:"role"`
}

// PutUserRole PUT /api/v1/users/:id/role
func (r *Router) PutUserRole(c echo.Context) error {
	user, err := r.userFromRequest(c)
	if err != nil {
		return err
	}
	var req putUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := r.repo.GetRoleByName(req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		return r.internalError(err)
	}

	changed, err := r.engine.SetRole(user, role)
	if err != nil {
		return r.internalError(err)
	}
	if !changed {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, userRoleResponse{Role: role.Name})
}

// PostUserRole POST /api/v1/users/:id/role
//
// ユーザー作成時のロール指定。PUTと異なり、存在しないロール名は
// エラーにせず黙って読み飛ばします。
func (r *Router) PostUserRole(c echo.Context) error {
	user, err := r.userFromRequest(c)
	if err != nil {
		return err
	}
	var req putUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	changed, err := r.engine.AssignRoleByName(user, req.Role)
	if err != nil {
		return r.internalError(err)
	}
	if !changed {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, userRoleResponse{Role: req.Role})
}

func (r *Router) userFromRequest(c echo.Context) (*model.UserInfo, error) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return &model.UserInfo{
		ID:    id,
		Admin: c.QueryParam("admin") == "true",
	}, nil
}

func (r *Router) internalError(err error) error {
	r.logger.Error("internal server error", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError)
}
