package handler // handler defines http handlers

import (
    "context"
    "errors"
    "strconv"
    "strings"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
)

// dbTimeout bounds every store call made by a handler.
const dbTimeout = 5 * time.Second

// Logger is the subset of *applog.Logger handlers write to.
type Logger interface {
    Infof(format string, args ...any)
    Warnf(format string, args ...any)
    Errorf(format string, args ...any)
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(c echo.Context) int {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    return page
}

// totalPages is ceil(total/size), at least 1.
func totalPages(total int64, size int) int {
    if size < 1 || total <= 0 {
        return 1
    }
    return int((total + int64(size) - 1) / int64(size))
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// storeUnavailable reports errors that mean the database could not be
// reached in time, as opposed to a failing query.
func storeUnavailable(err error) bool {
    if err == nil {
        return false
    }
    if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
        return true
    }
    return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func deref(p *string) string {
    if p == nil {
        return ""
    }
    return *p
}
