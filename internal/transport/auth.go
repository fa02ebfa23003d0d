package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/rpggio/eventsadmin/internal/domain/operator"
)

// DefaultSessionCookie is the cookie carrying the operator session token.
const DefaultSessionCookie = "eventsadmin_session"

// SessionResolver resolves an operator session from a bearer token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*operator.Session, error)
}

// SessionResolverFunc adapts a function to SessionResolver.
type SessionResolverFunc func(ctx context.Context, token string) (*operator.Session, error)

func (f SessionResolverFunc) ResolveSession(ctx context.Context, token string) (*operator.Session, error) {
	return f(ctx, token)
}

// TokenFromRequest returns the session token from the named cookie, falling
// back to an Authorization bearer token.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// resolveOperator returns the operator session for r, or nil when the
// request carries no usable session. Absent and incomplete sessions are
// indistinguishable to callers.
func resolveOperator(r *http.Request, resolver SessionResolver, cookieName string) *operator.Session {
	if resolver == nil {
		return nil
	}
	token := TokenFromRequest(r, cookieName)
	if token == "" {
		return nil
	}
	sess, err := resolver.ResolveSession(r.Context(), token)
	if err != nil || sess == nil || sess.Email == "" {
		return nil
	}
	return sess
}
