package middleware // reusable HTTP middleware for the planner API

import (
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// ActorIdentity returns an Echo middleware that resolves the audit
// actor once at the request boundary.  When a valid Bearer token is
// present its subject claim is stored under "actor" in the context;
// requests without a usable token simply proceed without one, and the
// planner falls back to the "browser" actor.  Authentication itself
// lives in another service; this middleware only extracts identity
// for the audit trail and never rejects a request.
func ActorIdentity(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if secret == "" {
                return next(c)
            }
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return next(c)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return next(c)
            }
            if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                if sub, ok := claims["sub"].(string); ok && sub != "" {
                    c.Set("actor", sub)
                }
            }
            return next(c)
        }
    }
}

// actorLabel returns the actor stored by ActorIdentity, or "browser"
// when the request carries no identity.  Used for rate-limit keying.
func actorLabel(c echo.Context) string {
    if v := c.Get("actor"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "browser"
}
