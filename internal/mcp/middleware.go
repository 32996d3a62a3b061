package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const sessionIDKey contextKey = iota

// getSessionID extracts session ID from context.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// authMiddleware checks the bearer token on HTTP transports. A single shared
// token is enough here; there is one user.
func authMiddleware(token string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			presented := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if presented == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}
			if presented != token {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			return next(ctx, method, req)
		}
	}
}

// sessionMiddleware extracts session ID from Mcp-Session-Id header (HTTP) or metadata (stdio).
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string

			// Try HTTP header first (HTTP transport)
			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get("Mcp-Session-Id")
			}

			// If not in header, check metadata (stdio transport).
			// Some notifications (like "initialized") have nil params, so
			// guard against a nil underlying value in GetMeta.
			if sessionID == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if sid, ok := meta["session_id"].(string); ok {
								sessionID = sid
							}
						}
					}()
				}
			}

			if sessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			}

			return next(ctx, method, req)
		}
	}
}
