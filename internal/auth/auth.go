package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"bookshelf/internal/model"
)

var (
	ErrNoSession    = errors.New("no session")
	ErrInvalidToken = errors.New("invalid session token")
)

// IdentityProvider resolves the user behind the current request.
// A returned error or nil user means the caller is unauthenticated.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

type tokenKey struct{}

// WithToken stores a raw bearer token on the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token set by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok && tok != ""
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Claims follows the GoTrue access token layout.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HS256 session tokens signed with a shared secret.
type JWTProvider struct {
	secret   []byte
	audience string
}

func NewJWTProvider(secret, audience string) (*JWTProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTProvider{secret: []byte(secret), audience: audience}, nil
}

// CurrentUser verifies the context token and maps its claims to a user.
func (p *JWTProvider) CurrentUser(ctx context.Context) (*model.User, error) {
	raw, ok := TokenFromContext(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	claims, err := p.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: claims.Subject, Email: claims.Email}, nil
}

// Parse validates signature, expiry and audience.
func (p *JWTProvider) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.audience != "" {
		opts = append(opts, jwt.WithAudience(p.audience))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
