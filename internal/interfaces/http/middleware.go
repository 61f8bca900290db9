package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// HeaderUserEmail lo inyecta el gateway que autentica al usuario.
const HeaderUserEmail = "X-User-Email"

const localUserEmail = "user_email"

// UserMiddleware exige la identidad del usuario y la deja en c.Locals.
func UserMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := strings.TrimSpace(c.Get(HeaderUserEmail))
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_USER", Message: HeaderUserEmail + " requerido"})
		}
		c.Locals(localUserEmail, strings.ToLower(email))
		return c.Next()
	}
}

// GetUserEmail devuelve el usuario autenticado (después de UserMiddleware).
func GetUserEmail(c *fiber.Ctx) string {
	s, _ := c.Locals(localUserEmail).(string)
	return s
}

// RequestLogger registra cada petición con su estado y latencia.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error().Err(err)
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user", GetUserEmail(c)).
			Msg("http")
		return err
	}
}
