package middleware

import (
	"strings"

	"github.com/biosecret/tasktracker/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// localUserID là key lưu user id trong c.Locals
const localUserID = "user_id"

// TokenVerifier kiểm tra token và trả về user id
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// JWTMiddleware xác thực access token.
// Thiếu header hoặc không có "Bearer <token>" trả về 401, token sai hoặc hết hạn trả về 403.
func JWTMiddleware(verifier TokenVerifier, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Lấy token từ header Authorization
		authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		scheme, tokenString, found := strings.Cut(authHeader, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No token provided"})
		}

		// Parse và kiểm tra token
		userID, err := verifier.Verify(tokenString)
		if err != nil {
			// token hết hạn là chuyện bình thường, token sai thì cần để ý hơn
			if auth.IsExpired(err) {
				log.Debug().Str("request_id", RequestID(c)).Str("path", c.Path()).Msg("Expired token rejected")
			} else {
				log.Warn().Err(err).Str("request_id", RequestID(c)).Str("ip", c.IP()).Str("path", c.Path()).Msg("Invalid token rejected")
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid token"})
		}

		// Lưu user ID vào context cho các handler phía sau
		c.Locals(localUserID, userID)

		return c.Next()
	}
}

// UserID trả về user id do JWTMiddleware gắn vào request
func UserID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(localUserID).(int64)
	return id, ok && id > 0
}
