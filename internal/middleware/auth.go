package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/mapsdb/internal/models"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/localnerve/mapsdb/internal/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const userLocal = "user"

// AuthConfig holds the token verification settings
type AuthConfig struct {
	Secret []byte
	Issuer string
}

// Claims are the bearer token claims accepted by the API. The user is named
// by user_id, or by sub when user_id is absent.
type Claims struct {
	UserID    string `json:"user_id,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// IssueToken signs an HS256 access token for userID
func IssueToken(cfg AuthConfig, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func parseToken(cfg AuthConfig, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, errors.Errorf("token type %q is not an access token", claims.TokenType)
	}
	if claims.subject() == "" {
		return nil, errors.New("token does not name a user")
	}
	return claims, nil
}

// Authenticate verifies the bearer token and loads the user it names.
// Tokens are issued elsewhere; only the signature and claims are checked here.
func Authenticate(db *gorm.DB, cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return types.Unauthorized("Authentication credentials were not provided.")
		}

		claims, err := parseToken(cfg, strings.TrimSpace(raw))
		if err != nil {
			log.Debug().Err(err).Str("request_id", RequestIDFrom(c)).Msg("Rejected bearer token")
			return types.Unauthorized("Given token not valid for any token type")
		}

		user, err := services.GetUser(db, claims.subject())
		if err != nil {
			if types.IsKind(err, types.KindNotFound) {
				return types.Unauthorized("User not found")
			}
			return err
		}
		c.Locals(userLocal, user)
		return c.Next()
	}
}

// RequireStaff rejects authenticated users without staff rights
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return types.Unauthorized("Authentication credentials were not provided.")
		}
		if !user.IsStaff {
			return types.Forbidden("You do not have permission to perform this action.")
		}
		return c.Next()
	}
}

// CurrentUser returns the user loaded by Authenticate, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocal).(*models.User)
	return user
}
