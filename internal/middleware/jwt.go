package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// Account roles carried in the role claim of an access token.
const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
	RoleAdmin     = "admin"
)

// AccessClaims is the payload of a Sprint Connect access token. The subject
// holds the numeric user id. Tokens without a role belong to students.
type AccessClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTProtected validates HS256 bearer tokens and binds user_id and user_role
// to the request.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}

	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		var claims AccessClaims
		token, err := parser.ParseWithClaims(tokenString, &claims, keyFunc)
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := parseSubject(claims.Subject)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}
		role, ok := accountRole(claims.Role)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token role")
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func parseSubject(subject string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(subject), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed == 0 {
		return 0, fmt.Errorf("subject must be a positive user id")
	}
	return uint(parsed), nil
}

// accountRole normalizes the role claim. An empty claim means student.
func accountRole(value string) (string, bool) {
	role := strings.ToLower(strings.TrimSpace(value))
	switch role {
	case "":
		return RoleStudent, true
	case RoleStudent, RoleCounselor, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}
