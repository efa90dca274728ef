package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clinicavet/kardex-api/pkg/logger"
)

// RequestLogger registra cada petición HTTP con método, ruta, estado y
// latencia, usando el logger estructurado de la aplicación.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
