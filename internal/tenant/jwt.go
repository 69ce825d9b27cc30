package tenant

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when token validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired
	ErrExpiredToken = errors.New("token has expired")
	// ErrMissingAgency is returned when the token carries no agency claim
	ErrMissingAgency = errors.New("token has no agency_id claim")
)

// Claims are the custom JWT claims carried by agency tokens.
type Claims struct {
	AgencyID string `json:"agency_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Validator verifies bearer tokens and extracts the tenant.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a token validator with the given HMAC secret.
// issuer is optional; when set, tokens from other issuers are rejected.
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// Validate parses and verifies a token string and returns the tenant
// context embedded in it.
func (v *Validator) Validate(tokenString string) (*Context, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AgencyID == "" {
		return nil, ErrMissingAgency
	}

	return &Context{
		AgencyID: claims.AgencyID,
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}
