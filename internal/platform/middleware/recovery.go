package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// Recovery turns a handler panic into the portal's regular failure envelope
// instead of a dropped connection. http.ErrAbortHandler passes through, that
// is the server's own way of aborting a response.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				rid, _ := c.Get("request_id").(string)
				logger.Error().
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Str("panic", fmt.Sprintf("%v", r)).
					Bytes("stack", debug.Stack()).
					Msg("panique interceptée")

				err = apperror.JSON(c, apperror.New(apperror.KindUnknown, "erreur interne du serveur"))
			}()
			return next(c)
		}
	}
}
