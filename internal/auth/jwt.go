// Package auth implements the single-admin sign-in gate.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// RoleAdmin is the only role issued.
const RoleAdmin = "admin"

// ErrWrongKind is returned when a refresh token is presented as an access token or vice versa.
var ErrWrongKind = errors.New("wrong token kind")

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	AccessExp    time.Time `json:"accessExpiresAt"`
	RefreshExp   time.Time `json:"refreshExpiresAt"`
}

// Claims represents JWT payload.
type Claims struct {
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	Remember bool   `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	Issuer      string
	Key         []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RememberTTL time.Duration

	now func() time.Time
}

// NewSigner builds a signer. A zero rememberTTL falls back to refreshTTL.
func NewSigner(issuer, key string, accessTTL, refreshTTL, rememberTTL time.Duration) *Signer {
	if rememberTTL <= 0 {
		rememberTTL = refreshTTL
	}
	return &Signer{
		Issuer:      issuer,
		Key:         []byte(key),
		AccessTTL:   accessTTL,
		RefreshTTL:  refreshTTL,
		RememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Issue issues signed access and refresh tokens for subject. When remember is
// set the refresh token lives for RememberTTL instead of RefreshTTL.
func (s *Signer) Issue(subject string, remember bool) (TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	refreshTTL := s.RefreshTTL
	if remember {
		refreshTTL = s.RememberTTL
	}
	refreshExp := now.Add(refreshTTL)

	accessToken, err := s.sign(subject, KindAccess, remember, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := s.sign(subject, KindRefresh, remember, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *Signer) sign(subject, kind string, remember bool, now, exp time.Time) (string, error) {
	claims := Claims{
		Role:     RoleAdmin,
		Kind:     kind,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Key)
}

// Parse validates a token of the given kind and returns its claims.
func (s *Signer) Parse(tokenStr, kind string) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.Key, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	return *claims, nil
}

// Refresh exchanges a refresh token for a new pair, keeping the remember flag.
func (s *Signer) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.Parse(refreshToken, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return s.Issue(claims.Subject, claims.Remember)
}
