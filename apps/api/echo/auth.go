package echoapi

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
)

// appJWTConfig verifies the access tokens minted by the credential store
// (HS256, shared JWT secret). This API never issues tokens of its own.
var appJWTConfig = middleware.JWTConfig{
	SigningKey:    []byte(core.Conf.GoTrue.JWTSecret),
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "userToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims carried by a credential store
// access token. Subject is the teacher's opaque user id.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextOwnerID resolves the acting teacher's id; every row lookup is
// scoped by it.
func contextOwnerID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func contextUser(ctx echo.Context) auth.User {
	var usr auth.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Email = claims.Email
	}
	return usr
}

// GenerateToken signs a JWT representing the Claims with the credential
// store's secret. Production tokens come from the store itself; this exists
// for the test suite and local tooling.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)
	return token.SignedString(appJWTConfig.SigningKey.([]byte))
}
