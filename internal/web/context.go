package web

import (
	"context"
	"net/http"

	"github.com/cssbattle/championship/internal/core"
	"github.com/google/uuid"
)

// clientCookie identifies a browser across requests. It namespaces
// preferences and tags import logs; it is not an authentication token.
const clientCookie = "client_id"

// clientID returns the caller's client ID, issuing a new cookie when the
// request has none or an invalid one.
func clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// WithRequestMetadata attaches the uploader's IP, client ID and user agent
// to ctx for import logging.
func WithRequestMetadata(ctx context.Context, r *http.Request, client string) context.Context {
	return core.ContextWithUploader(ctx, core.Uploader{
		IP:        clientIP(r),
		ClientID:  client,
		UserAgent: r.UserAgent(),
	})
}
