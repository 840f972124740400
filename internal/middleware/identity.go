package middleware

// identity.go holds helpers that turn the claims stored by JWTAuth back into
// typed values.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// subjectID converts a decoded "sub" claim to a user id.  JSON numbers
// decode as float64; numeric strings are accepted as well.
func subjectID(v any) (uint64, bool) {
    switch s := v.(type) {
    case float64:
        if s <= 0 {
            return 0, false
        }
        return uint64(s), true
    case string:
        n, err := strconv.ParseUint(s, 10, 64)
        return n, err == nil && n > 0
    }
    return 0, false
}

// UserID returns the authenticated admin id, or 0 for anonymous requests.
func UserID(c echo.Context) uint64 {
    if id, ok := c.Get(CtxUserID).(uint64); ok {
        return id
    }
    return 0
}

// Email returns the authenticated admin email, or "".
func Email(c echo.Context) string {
    s, _ := c.Get(CtxEmail).(string)
    return s
}
