package app

import (
	"context"
	"strings"
)

// Origin values name the surface a gesture arrived from.
const (
	OriginTUI    = "tui"
	OriginHTTP   = "http"
	OriginMCP    = "mcp"
	OriginSystem = "system"
)

// GestureOrigin carries caller identity metadata for gesture attribution.
type GestureOrigin struct {
	Transport string
	ActorID   string
}

// gestureOriginContextKey stores context keys for gesture origin values.
type gestureOriginContextKey struct{}

// WithGestureOrigin attaches a normalized gesture origin to context.
func WithGestureOrigin(ctx context.Context, origin GestureOrigin) context.Context {
	return context.WithValue(ctx, gestureOriginContextKey{}, normalizeGestureOrigin(origin))
}

// GestureOriginFromContext returns the origin attached to ctx, defaulting to system.
func GestureOriginFromContext(ctx context.Context) GestureOrigin {
	origin, ok := ctx.Value(gestureOriginContextKey{}).(GestureOrigin)
	if !ok {
		return GestureOrigin{Transport: OriginSystem}
	}
	return origin
}

// normalizeGestureOrigin trims and canonicalizes origin fields.
func normalizeGestureOrigin(origin GestureOrigin) GestureOrigin {
	origin.Transport = strings.ToLower(strings.TrimSpace(origin.Transport))
	origin.ActorID = strings.TrimSpace(origin.ActorID)
	switch origin.Transport {
	case OriginTUI, OriginHTTP, OriginMCP, OriginSystem:
	default:
		origin.Transport = OriginSystem
	}
	return origin
}
