package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const tokenTTL = 24 * time.Hour

func (s *Server) issueToken(accountID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", accountID),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates a token and returns its subject (the account id).
func (s *Server) parseToken(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return parsed.Claims.GetSubject()
}

// authMiddleware resolves the bearer token to an account and stores it on
// the context under "account".
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return fail(c, http.StatusUnauthorized, "authentication required")
			}

			sub, err := s.parseToken(raw)
			if err != nil {
				return fail(c, http.StatusUnauthorized, "invalid or expired token")
			}

			var account Account
			if err := s.db.First(&account, "id = ?", sub).Error; err != nil {
				return fail(c, http.StatusUnauthorized, "account not found")
			}

			c.Set("account", &account)
			return next(c)
		}
	}
}

func currentAccount(c echo.Context) *Account {
	account, _ := c.Get("account").(*Account)
	return account
}
