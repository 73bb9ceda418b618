package usecases

import (
	"encoding/base64"
	"fmt"
	"time"

	"media-pipeline/internal/pkg/config"
	consts "media-pipeline/pkg/constants"

	"github.com/golang-jwt/jwt/v5"
)

type TokenService interface {
	Issue() (string, error)
	Validate(token string) (*jwt.RegisteredClaims, error)
}

type tokenService struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenService decodes the base64 primary verification key.
func NewTokenService(cfg config.TokenConfig) (TokenService, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.PrimaryVerificationKey)
	if err != nil {
		return nil, fmt.Errorf("JWT_PRIMARY_VERIFICATION_KEY is not valid base64: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("JWT_PRIMARY_VERIFICATION_KEY is empty")
	}
	return &tokenService{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

func (s *tokenService) Issue() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		NotBefore: jwt.NewNumericDate(now.Add(-consts.TokenNotBeforeSkew)),
		ExpiresAt: jwt.NewNumericDate(now.Add(consts.TokenLifetime)),
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Validate(token string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
