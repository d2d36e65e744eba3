package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

const claimsKey = "claims"

// RequireToken accepts requests carrying an HS256 bearer token signed with secret.
func RequireToken(secret string) echo.MiddlewareFunc {
	keyFn := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}

			claims := &jwt.StandardClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimSpace(header[len("bearer "):]), claims, keyFn)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func Claims(c echo.Context) (*jwt.StandardClaims, bool) {
	claims, ok := c.Get(claimsKey).(*jwt.StandardClaims)
	return claims, ok
}
