package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	tokenCookieName = "wf_token"
	tokenQueryParam = "token"
	bearerPrefix    = "Bearer "
)

// ErrUnauthenticated is returned for missing, malformed or expired tokens.
var ErrUnauthenticated = errors.New("authentication required")

// SessionAuthorizer resolves an access token to a subject.
type SessionAuthorizer interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// TokenAuthorizer verifies HS256 session tokens signed with a shared secret.
type TokenAuthorizer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenAuthorizer creates an authorizer for tokens signed with secret.
func NewTokenAuthorizer(secret []byte) *TokenAuthorizer {
	return &TokenAuthorizer{secret: secret, now: time.Now}
}

// Authenticate returns the token's subject. Tokens must carry an expiry.
func (a *TokenAuthorizer) Authenticate(ctx context.Context, accessToken string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a == nil || len(a.secret) == 0 {
		return "", errors.New("token authorizer is not configured")
	}
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return subject, nil
}

// SignSessionToken issues an HS256 token for subject that expires at
// expiresAt.
func SignSessionToken(secret []byte, subject string, issuedAt, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is required")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if !expiresAt.After(issuedAt) {
		return "", errors.New("expiry must be after issue time")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	return token.SignedString(secret)
}

func accessTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	if token := strings.TrimSpace(r.URL.Query().Get(tokenQueryParam)); token != "" {
		return token
	}
	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

type subjectContextKey struct{}

func subjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey{}).(string)
	return subject
}

// authenticate resolves the request subject. Without an authorizer every
// request is anonymous and allowed.
func (h *handler) authenticate(r *http.Request) (*http.Request, bool) {
	if h.authorizer == nil {
		return r, true
	}
	subject, err := h.authorizer.Authenticate(r.Context(), accessTokenFromRequest(r))
	if err != nil {
		h.logger.Info("request unauthorized",
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Error(err),
		)
		return r, false
	}
	return r.WithContext(context.WithValue(r.Context(), subjectContextKey{}, subject)), true
}

func (h *handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r, ok := h.authenticate(r)
		if !ok {
			writeAPIError(w, http.StatusUnauthorized, kindUnauthenticated, "", ErrUnauthenticated.Error())
			return
		}
		next(w, r)
	}
}
