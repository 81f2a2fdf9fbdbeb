package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core/role"
)

type roleApi struct {
	svc      *role.Service
	validate *validator.Validate
}

func registerRoleAPI(g *echo.Group, adminGroup *echo.Group, svc *role.Service, validate *validator.Validate) {
	api := roleApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.POST("", api.create)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)

	adminGroup.GET("/permissions", api.queryPermissions)
}

// Handlers

func (api *roleApi) query(ctx echo.Context) error {
	roles, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	if roles == nil {
		roles = []role.Role{}
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *roleApi) create(ctx echo.Context) error {
	var data role.NewRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rl, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating role")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "Role created successfully", ID: rl.ID})
}

func (api *roleApi) update(ctx echo.Context) error {
	var data role.NewRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		if errors.Cause(err) == role.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Role not found")
		}
		return errors.Wrap(err, "updating role")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "Role updated successfully"})
}

func (api *roleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == role.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Role not found")
		}
		return errors.Wrap(err, "deleting role")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "Role deleted successfully"})
}

func (api *roleApi) queryPermissions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Permissions())
}
