package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/user"
)

var (
	// "no such account" and "wrong password" both surface as errAuthenticationFailed.
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	errInvalidToken         = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	errUserNotFound         = echo.NewHTTPError(http.StatusUnauthorized, "user not found")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errEmailRegistered      = echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	errStoreUnavailable     = echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Every unauthorized rejection carries a WWW-Authenticate challenge.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			// normalize the JWT middleware rejections (missing, malformed,
			// bad signature, expired) to a single invalid-token response
			if origErr == middleware.ErrJWTMissing || origErr.Message == "invalid or expired jwt" {
				code = errInvalidToken.Code
				message = errInvalidToken.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)
			if core.IsUnavailable(err) {
				// the credential store could not be reached; not an auth failure
				code = errStoreUnavailable.Code
				message = errStoreUnavailable.Message
			}

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.Email = claims.Subject
				usr.Name = claims.Name
			}
			logger.Error(message.(string), err, usr)
		}

		if code == http.StatusUnauthorized {
			ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
