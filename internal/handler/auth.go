package handler

import (
    "context"       // provides context with cancellation for DB calls
    "errors"        // sentinel comparisons
    "net/http"      // HTTP status codes and primitives
    "strings"       // string manipulation utilities
    "time"          // token lifetimes

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/kailashsur/filmyfly/internal/config"     // app configuration
    "github.com/kailashsur/filmyfly/internal/middleware" // access token parsing shared with JWTAuth
    "github.com/kailashsur/filmyfly/internal/repository" // DB repositories
    "github.com/kailashsur/filmyfly/internal/utils"      // token issuing and password checks
)

// AuthHandler bundles dependencies for the admin session endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.AdminUserRepo
    Tokens *repository.TokenRepo
    Log    Logger
}

func NewAuthHandler(cfg config.Config, u *repository.AdminUserRepo, t *repository.TokenRepo, log Logger) *AuthHandler {
    if u == nil || t == nil || log == nil {
        panic("nil dependency passed to NewAuthHandler")
    }
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

func (h *AuthHandler) accessTTL() time.Duration {
    return time.Duration(h.Cfg.AccessTTLMin) * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
    return time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
}

// issue creates and stores a new token pair and mirrors the access token
// into the session cookie.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, id uint64, email, role string) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, email, role, h.accessTTL())
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.refreshTTL())
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.AccessCookie,
        Value:    access.Token,
        Path:     "/admin",
        Expires:  access.Exp,
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteLaxMode,
    })
    return authResp{
        User:    userPart{ID: id, Email: email, Role: role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        h.Log.Errorf("login %s: %v", req.Email, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        h.Log.Warnf("failed admin login for %s from %s", req.Email, c.RealIP())
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    resp, err := h.issue(ctx, c, u.ID, u.Email, u.Role)
    if err != nil {
        h.Log.Errorf("issue tokens for %s: %v", u.Email, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    h.Log.Infof("admin %s logged in", u.Email)
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil || !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        h.Log.Warnf("revoke rotated refresh token of user %d: %v", userID, err)
    }

    resp, err := h.issue(ctx, c, u.ID, u.Email, u.Role)
    if err != nil {
        h.Log.Errorf("issue tokens for %s: %v", u.Email, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when a refresh_token is supplied, otherwise
// every session of the bearer's user.  It always clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(&http.Cookie{Name: middleware.AccessCookie, Value: "", Path: "/admin", MaxAge: -1, HttpOnly: true})

    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if refreshToken != "" {
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }

    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        claims, err := middleware.ParseAccess(strings.TrimPrefix(auth, "Bearer "), h.Cfg.JWTSecret)
        if err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        sub, _ := claims["sub"].(float64)
        if sub <= 0 {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        if err := h.Tokens.RevokeAllForUser(ctx, uint64(sub)); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the authenticated admin.
func (h *AuthHandler) Me(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    u, err := h.Users.GetByID(ctx, middleware.UserID(c))
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
