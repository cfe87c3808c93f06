package session

import "context"

type sessionContextKey struct{}

// ContextWith attaches the resolved session to the context.
func ContextWith(ctx context.Context, sess *Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// FromContext extracts the resolved session, if any. A missing session means
// the request is anonymous.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	if !ok || sess == nil || sess.Account == nil {
		return nil, false
	}
	return sess, true
}
