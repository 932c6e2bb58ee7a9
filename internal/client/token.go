package client

import "context"

// TokenSource supplies the session's bearer credential for outbound calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed credential, handy for tests and CLI use.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type tokenContextKey struct{}

// WithToken stores the session's bearer credential on the context. The HTTP
// layer sets it per request so shared clients pick up the right session.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok && token != ""
}

// ContextTokens reads the credential previously attached with WithToken.
type ContextTokens struct{}

func (ContextTokens) Token(ctx context.Context) (string, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}
	return token, nil
}
