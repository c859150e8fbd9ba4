package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TokenVerifier checks a bearer access token and returns the user id it
// belongs to.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

type viewerKey struct{}

// ViewerID returns the authenticated user's id from the request context, or
// an empty string for anonymous requests.
func ViewerID(ctx context.Context) string {
	id, _ := ctx.Value(viewerKey{}).(string)
	return id
}

// WithViewer returns a context carrying the given viewer id.
func WithViewer(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, viewerKey{}, userID)
}

// ResolveViewer reads an optional Authorization bearer token and, when it
// verifies, places the viewer id on the context. Requests without a token,
// or with an invalid one, continue anonymously.
func ResolveViewer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if userID, err := verifier.Verify(token); err == nil {
					r = r.WithContext(WithViewer(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireViewer rejects requests that did not resolve to an authenticated
// viewer. It must run after ResolveViewer.
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ViewerID(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
