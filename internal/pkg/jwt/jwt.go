package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessClaims are the claims the identity service puts in access tokens.
type AccessClaims struct {
	UserID     string
	Email      string
	EmployeeID *string
	CompanyID  *string
	Role       user.Role
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	ParseAccessToken(ctx context.Context, token string) (AccessClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService verifies HS256 tokens signed with the secret shared with the
// identity service.
func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(c AccessClaims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     c.UserID,
		"email":       c.Email,
		"employee_id": valueOrNil(c.EmployeeID),
		"company_id":  valueOrNil(c.CompanyID),
		"role":        string(c.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseAccessToken verifies token and extracts its claims.
func (j *JWTService) ParseAccessToken(ctx context.Context, token string) (AccessClaims, error) {
	t, err := jwtauth.VerifyToken(j.tokenAuth, token)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("failed to verify token: %w", err)
	}

	claims, err := t.AsMap(ctx)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("failed to read claims: %w", err)
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return AccessClaims{}, fmt.Errorf("unexpected token type %q", typ)
	}

	out := AccessClaims{}
	out.UserID, _ = claims["user_id"].(string)
	out.Email, _ = claims["email"].(string)
	if role, ok := claims["role"].(string); ok {
		out.Role = user.Role(role)
	}
	if v, ok := claims["employee_id"].(string); ok {
		out.EmployeeID = &v
	}
	if v, ok := claims["company_id"].(string); ok {
		out.CompanyID = &v
	}
	return out, nil
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
