package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionClaims are the claims carried by locally minted session tokens.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid"`
	Kind string `json:"kind"`
}

// TokenService mints the locally-scoped placeholder tokens handed out when
// a login or signup never obtained a remotely issued token. Each minted
// token is unique per login (fresh jti). Remote tokens are opaque to this
// package and are never validated here.
type TokenService struct {
	signingKey []byte
	issuer     string
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, issuer string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey: signingKey,
		issuer:     issuer,
		logger:     logger,
	}
}

// MintLocalToken signs a session token for identity. The token asserts
// nothing to the remote service; it only keeps the client session alive.
func (ts *TokenService) MintLocalToken(identity Identity) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   ts.issuer,
			Subject:  identity.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		UID:  identity.UserID,
		Kind: string(TokenKindLocal),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signedString, nil
}

// Validate parses a locally minted session token and returns its claims.
func (ts *TokenService) Validate(tokenString string) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service: unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid session token")
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token service: could not decode or validate claims")
	return nil, errors.New("invalid session token", errors.CategoryAuth)
}
