package utils

import (
	"errors"
	"fmt"
	"time"

	"picstorm-server/internal/config"
	"picstorm-server/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "picstorm-server"

// AccessClaims 访问令牌：subject 为昵称，附带用户 ID 与权限列表。
type AccessClaims struct {
	ID          uint     `json:"id"`
	Authorities []string `json:"authorities"`
	Type        string   `json:"type"` // "access"
	jwt.RegisteredClaims
}

// Nickname 返回令牌主体（昵称）
func (c *AccessClaims) Nickname() string {
	return c.Subject
}

// HasAuthority 判断令牌是否携带指定权限
func (c *AccessClaims) HasAuthority(authority model.Authority) bool {
	for _, a := range c.Authorities {
		if a == string(authority) {
			return true
		}
	}
	return false
}

func getSecret() []byte {
	return []byte(config.Get().JWT.Secret)
}

// GenerateAccessToken 为用户签发 HS256 访问令牌，权限取自当前角色。
func GenerateAccessToken(user *model.User, duration time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		ID:          user.ID,
		Authorities: user.Role.AuthorityNames(),
		Type:        "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Nickname,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSecret())
}

func ParseAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getSecret(), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		if claims.Type != "access" {
			return nil, errors.New("invalid token type")
		}
		if claims.Subject == "" {
			return nil, errors.New("token subject missing")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
