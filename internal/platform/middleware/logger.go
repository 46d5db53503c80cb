package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nyny77/mely-api/internal/platform/apperror"
)

// Logger writes one access-log line per request. Failures log at warn for
// client-side error kinds (bad input, auth, conflicts) and at error for the
// rest, so a family mistyping their password does not look like an outage.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				if herr, ok := err.(*echo.HTTPError); ok {
					status = herr.Code
				} else {
					status = apperror.HTTPStatus(err)
				}
				if status < 500 {
					evt = logger.Warn().Err(err)
				} else {
					evt = logger.Error().Err(err)
				}
			}

			rid, _ := c.Get("request_id").(string)
			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("requête traitée")

			return err
		}
	}
}
