package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/cors"
)

// CORS applies rs/cors with the given origins. "*" allows any origin.
func CORS(origins []string) fiber.Handler {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
			HeaderRequestID,
		},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         86400,
	})

	return adaptor.HTTPMiddleware(c.Handler)
}
