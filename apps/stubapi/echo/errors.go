package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/course"
	"github.com/trezcool/masomo/core/user"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			msg  string
			data interface{}
		)

		cause := errors.Cause(err)
		var nfErr *course.NotFoundError
		switch {
		case errors.As(cause, &nfErr), cause == user.ErrNotFound:
			code = http.StatusNotFound
			msg = cause.Error()
		case cause == course.ErrAlreadyEnrolled:
			code = http.StatusConflict
			msg = cause.Error()
		case cause == user.ErrAuthenticationFailed:
			code = http.StatusUnauthorized
			msg = cause.Error()
		}

		if code == 0 {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					msg = "missing or malformed jwt"
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				if m, ok := origErr.Message.(string); ok {
					msg = m
				} else {
					msg = http.StatusText(code)
				}
			case validator.ValidationErrors, *core.ValidationError:
				fldErrs := make(map[string]string)
				for _, fErr := range core.FieldErrors(origErr, translator) {
					fldErrs[fErr.Field] = fErr.Error
				}
				code = http.StatusBadRequest
				msg = "validation failed"
				if len(fldErrs) > 0 {
					data = fldErrs
				} else {
					msg = origErr.Error()
				}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg = http.StatusText(http.StatusInternalServerError)

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.Email = claims.Email
					usr.Role = claims.Role
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			msg = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = respond(ctx, code, data, msg)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
