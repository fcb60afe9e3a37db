package httpserver

import (
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

// uploadLimit covers product images and xlsx imports.
const uploadLimit = "10M"

// Common is the chain every request passes through. Credentialed CORS is only
// enabled for an explicit origin list.
func Common(allowOrigins []string) []echo.MiddlewareFunc {
	cors := ecM.CORSConfig{
		AllowHeaders: []string{echo.HeaderContentType, "X-CSRF-Token"},
	}
	if len(allowOrigins) > 0 {
		cors.AllowOrigins = allowOrigins
		cors.AllowCredentials = true
	}

	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Secure(),
		ecM.BodyLimit(uploadLimit),
		ecM.CORSWithConfig(cors),
	}
}
