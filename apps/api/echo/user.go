package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, svc *user.Service, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	g.GET("", api.query)
	g.POST("", api.create)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
}

// Handlers

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		if vErr, ok := err.(*core.ValidationError); ok && errors.Cause(vErr.Err) == user.ErrEmailExists {
			return errEmailRegistered
		}
		return err
	}

	usr, err := api.svc.Create(reqCtx, data)
	if err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return errEmailRegistered
		}
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "User created successfully", ID: usr.ID})
}

func (api *userApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	usr, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return errors.Wrap(err, "finding user by ID")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(reqCtx, api.validate, usr, api.svc); err != nil {
		return err
	}

	if _, err = api.svc.Update(reqCtx, usr.ID, data); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "User updated successfully"})
}

func (api *userApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, ackResponse{Message: "User deleted successfully"})
}

type ackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
