package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/Alkifr/hvp-v3/internal/config"
)

// bodyCapture duplicates the response body into a buffer (up to limit
// bytes) while forwarding it to the client unchanged.
type bodyCapture struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (w *bodyCapture) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
    if remain := w.limit - w.size; remain > 0 {
        if int64(len(b)) <= remain {
            w.buf.Write(b)
        } else {
            w.buf.Write(b[:remain])
        }
    }
    w.size += int64(len(b))
    return w.ResponseWriter.Write(b)
}

// cacheKey derives a stable Redis key from the route and query string.
// The raw parts are hashed so odd query values cannot grow keys
// without bound.
func cacheKey(prefix string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// payload layout: [4 bytes status][4 bytes ctLen][content type][body]
func encodeCached(status int, contentType string, body []byte) []byte {
    out := make([]byte, 8+len(contentType)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(contentType)))
    copy(out[8:], contentType)
    copy(out[8+len(contentType):], body)
    return out
}

func decodeCached(bs []byte) (status int, contentType string, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, "", nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    ctLen := int(binary.BigEndian.Uint32(bs[4:8]))
    if ctLen < 0 || 8+ctLen > len(bs) {
        return 0, "", nil, false
    }
    return status, string(bs[8 : 8+ctLen]), bs[8+ctLen:], true
}

// ResponseCache returns a middleware that serves successful responses
// of the configured methods from Redis.  Timeline reads dominate this
// service's traffic, so even a short TTL takes real load off MySQL.
// With caching disabled or no Redis client the middleware is a no-op.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKey(cfg.Prefix, c)
            ctx := c.Request().Context()

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, contentType, body, ok := decodeCached(bs); ok {
                    if contentType != "" {
                        c.Response().Header().Set(echo.HeaderContentType, contentType)
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, _ = c.Response().Write(body)
                    return nil
                }
            }

            cw := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status == http.StatusOK && cw.size <= cw.limit {
                contentType := c.Response().Header().Get(echo.HeaderContentType)
                // the request context may already be done; cache writes get their own
                _ = rdb.SetEx(context.Background(), key, encodeCached(cw.status, contentType, cw.buf.Bytes()), ttl).Err()
            }
            return nil
        }
    }
}
