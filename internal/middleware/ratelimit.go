package middleware

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "math"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/kailashsur/filmyfly/internal/config"
)

// maxLoginBody caps how much of a login request the limiter reads to find
// the email.
const maxLoginBody = 16 << 10

// attempt is the outcome of taking one token from a bucket.
type attempt struct {
    Allowed    bool
    Remaining  int64
    RetryAfter time.Duration
}

// bucketStore takes one token from the bucket named key.
type bucketStore interface {
    Take(ctx context.Context, key string, now time.Time) (attempt, error)
}

// takeScript refills the bucket for the whole intervals elapsed since the
// last refill, then spends one token if there is one.
var takeScript = redis.NewScript(`
local tokens, last = unpack(redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms'))
local now, capacity = tonumber(ARGV[1]), tonumber(ARGV[2])
local refill, interval, ttl = tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
tokens, last = tonumber(tokens), tonumber(last)
if tokens == nil or last == nil then
    tokens, last = capacity, now
end
local steps = math.floor(math.max(0, now - last) / interval)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval
end
local allowed, wait = 0, 0
if tokens > 0 then
    allowed, tokens = 1, tokens - 1
else
    wait = math.max(0, interval - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return { tokens, wait, allowed }
`)

type redisBuckets struct {
    rdb *redis.Client
    cfg config.RateLimitConfig
}

func (b redisBuckets) Take(ctx context.Context, key string, now time.Time) (attempt, error) {
    vals, err := takeScript.Run(ctx, b.rdb, []string{key},
        now.UnixMilli(), b.cfg.Capacity, b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(), int64(b.cfg.TTL/time.Second)).Int64Slice()
    if err != nil {
        return attempt{}, err
    }
    if len(vals) != 3 {
        return attempt{}, fmt.Errorf("unexpected bucket reply %v", vals)
    }
    return attempt{
        Allowed:    vals[2] == 1,
        Remaining:  vals[0],
        RetryAfter: time.Duration(vals[1]) * time.Millisecond,
    }, nil
}

// NewLoginLimiter throttles admin login attempts per client IP and submitted
// email, with the buckets kept in Redis.  It passes everything through when
// disabled or when rdb is nil; a Redis error lets the attempt through.
func NewLoginLimiter(cfg config.RateLimitConfig, rdb *redis.Client, log warner) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return loginLimiter(cfg, redisBuckets{rdb: rdb, cfg: cfg}, log)
}

func loginLimiter(cfg config.RateLimitConfig, store bucketStore, log warner) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := loginKey(cfg.Prefix, c.RealIP(), loginEmail(c.Request()))
            a, err := store.Take(c.Request().Context(), key, time.Now())
            if err != nil {
                log.Warnf("login rate limit %s: %v", key, err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(a.Remaining, 10))
            if a.Allowed {
                return next(c)
            }
            secs := int(math.Ceil(a.RetryAfter.Seconds()))
            h.Set("Retry-After", strconv.Itoa(secs))
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":      "Too many login attempts. Please try again later.",
                "retryAfter": secs,
            })
        }
    }
}

// loginKey names the bucket for one client and account.  The email is
// normalised the way the login handler looks it up.
func loginKey(prefix, ip, email string) string {
    if ip == "" {
        ip = "unknown"
    }
    email = strings.ToLower(strings.TrimSpace(email))
    if email == "" {
        email = "-"
    }
    return prefix + ":login:" + ip + ":" + email
}

type readCloser struct {
    io.Reader
    io.Closer
}

// loginEmail reads the email field of a JSON or form login body and puts the
// body back for the handler.
func loginEmail(req *http.Request) string {
    if req.Body == nil {
        return ""
    }
    orig := req.Body
    raw, err := io.ReadAll(io.LimitReader(orig, maxLoginBody))
    req.Body = readCloser{io.MultiReader(bytes.NewReader(raw), orig), orig}
    if err != nil {
        return ""
    }

    if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
        var body struct {
            Email string `json:"email"`
        }
        if json.Unmarshal(raw, &body) != nil {
            return ""
        }
        return body.Email
    }
    form, err := url.ParseQuery(string(raw))
    if err != nil {
        return ""
    }
    return form.Get("email")
}
