package core

import "context"

type contextKey string

const ctxKeyUploader contextKey = "uploader"

// Uploader identifies who sent an import, for log correlation.
type Uploader struct {
	IP        string
	ClientID  string
	UserAgent string
}

// ContextWithUploader attaches the uploader to ctx.
func ContextWithUploader(ctx context.Context, u Uploader) context.Context {
	return context.WithValue(ctx, ctxKeyUploader, u)
}

// UploaderFromContext returns the uploader attached to ctx, if any.
func UploaderFromContext(ctx context.Context) Uploader {
	if u, ok := ctx.Value(ctxKeyUploader).(Uploader); ok {
		return u
	}
	return Uploader{}
}
