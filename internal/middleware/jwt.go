package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// AccessCookie is the cookie the admin UI may use instead of the
// Authorization header.
const AccessCookie = "filmyfly_access"

// Context keys set by JWTAuth.
const (
    CtxUserID = "user_id"
    CtxEmail  = "email"
    CtxRole   = "role"
)

// bearerToken returns the raw access token from the Authorization header,
// falling back to the AccessCookie.  It returns "" when neither is present.
func bearerToken(c echo.Context) string {
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    if ck, err := c.Cookie(AccessCookie); err == nil {
        return strings.TrimSpace(ck.Value)
    }
    return ""
}

// ParseAccess validates raw against secret and returns its claims.  Only
// HMAC-signed tokens are accepted.
func ParseAccess(raw, secret string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, echo.ErrUnauthorized
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, echo.ErrUnauthorized
    }
    return claims, nil
}

// JWTAuth returns an Echo middleware that validates an admin access token
// and injects its subject, email and role claims into the request context.
// The token is read from a Bearer Authorization header or, failing that,
// from the AccessCookie.  Handlers read the values with UserID(c) and
// c.Get(CtxRole).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerToken(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := ParseAccess(raw, secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            uid, ok := subjectID(claims["sub"])
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(CtxUserID, uid)
            c.Set(CtxEmail, claims["email"])
            c.Set(CtxRole, claims["role"])
            return next(c)
        }
    }
}
