package services

import (
	"errors"
	"fmt"
	"time"

	"prospects/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// TokenIssuer mints a signed credential for a subject and its claims.
type TokenIssuer interface {
	Issue(subject string, claims models.Claims) (string, error)
}

// TokenValidator checks a credential and returns the identity it carries.
type TokenValidator interface {
	Validate(token string) (*Identity, error)
}

// Identity is the verified content of a credential.
type Identity struct {
	Subject   string
	Claims    models.Claims
	ExpiresAt time.Time
}

// IssuerOptions holds the registered claims stamped on every credential.
type IssuerOptions struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

// credentialClaims follows the custom-token layout: the subject is repeated
// as uid and the profile claims are nested under "claims".
type credentialClaims struct {
	UID    string        `json:"uid"`
	Claims models.Claims `json:"claims"`
	jwt.StandardClaims
}

// JWTIssuer signs credentials with HS256 or RS256.
type JWTIssuer struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	opts      IssuerOptions
	now       func() time.Time
}

// NewHMACIssuer creates a JWTIssuer signing with a shared secret.
func NewHMACIssuer(secret string, opts IssuerOptions) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return newJWTIssuer(jwt.SigningMethodHS256, []byte(secret), []byte(secret), opts), nil
}

// NewRSAIssuer creates a JWTIssuer signing with a PEM encoded RSA private key.
func NewRSAIssuer(privateKeyPEM []byte, opts IssuerOptions) (*JWTIssuer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	return newJWTIssuer(jwt.SigningMethodRS256, key, &key.PublicKey, opts), nil
}

func newJWTIssuer(method jwt.SigningMethod, signKey, verifyKey interface{}, opts IssuerOptions) *JWTIssuer {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &JWTIssuer{
		method:    method,
		signKey:   signKey,
		verifyKey: verifyKey,
		opts:      opts,
		now:       time.Now,
	}
}

// Issue signs a credential bound to subject.
func (i *JWTIssuer) Issue(subject string, claims models.Claims) (string, error) {
	if subject == "" {
		return "", errors.New("credential subject must not be empty")
	}

	now := i.now()
	token := jwt.NewWithClaims(i.method, credentialClaims{
		UID:    subject,
		Claims: claims,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			Issuer:    i.opts.Issuer,
			Audience:  i.opts.Audience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.opts.TTL).Unix(),
		},
	})

	signed, err := token.SignedString(i.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}

// Validate parses a credential, checking signature, expiry, issuer and audience.
func (i *JWTIssuer) Validate(tokenString string) (*Identity, error) {
	claims := &credentialClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != i.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.verifyKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if i.opts.Issuer != "" && !claims.VerifyIssuer(i.opts.Issuer, true) {
		return nil, errors.New("invalid token: issuer mismatch")
	}
	if i.opts.Audience != "" && !claims.VerifyAudience(i.opts.Audience, true) {
		return nil, errors.New("invalid token: audience mismatch")
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}

	return &Identity{
		Subject:   claims.Subject,
		Claims:    claims.Claims,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}
