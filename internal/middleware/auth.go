package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"vet-portal/internal/models"
)

// AccessTokenCookie is the cookie the identity system sets for browser sessions.
const AccessTokenCookie = "access_token"

const callerLocal = "caller"

// Claims are the caller claims issued by the identity system.
type Claims struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for caller. The portal only verifies tokens;
// this is used by tooling and tests.
func IssueToken(secret string, caller models.Caller, ttl time.Duration) (string, error) {
	claims := Claims{
		Phone: caller.Phone,
		Role:  caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its caller.
func ParseToken(secret, token string) (models.Caller, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Caller{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return models.Caller{}, errors.New("invalid token")
	}
	return models.Caller{Subject: claims.Subject, Phone: claims.Phone, Role: claims.Role}, nil
}

// Authenticate requires a valid token from the Authorization header or the
// access_token cookie and stores the caller in the request locals.
func Authenticate(secret string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(AccessTokenCookie)
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "authentication required",
			})
		}
		caller, err := ParseToken(secret, token)
		if err != nil {
			logger.Warn("rejected caller token", "security", true, "path", c.Path(), "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": true, "message": "invalid token",
			})
		}
		c.Locals(callerLocal, caller)
		return c.Next()
	}
}

// RequireStaff lets only doctors and admins through. It must run after Authenticate.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := CallerFrom(c)
		if !ok || !caller.IsStaff() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": true, "message": "staff only",
			})
		}
		return c.Next()
	}
}

// CallerFrom returns the authenticated caller of the request.
func CallerFrom(c *fiber.Ctx) (models.Caller, bool) {
	caller, ok := c.Locals(callerLocal).(models.Caller)
	return caller, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
