package tokens

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
