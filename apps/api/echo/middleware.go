package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core/user"
)

// currentUserMiddleware re-resolves the token subject against the credential
// store on every request it guards. Runs after the JWT middleware so a
// deleted or deactivated account is locked out before its token expires.
func currentUserMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				return errors.Wrap(err, "resolving current user")
			}
			return next(ctx)
		}
	}
}
