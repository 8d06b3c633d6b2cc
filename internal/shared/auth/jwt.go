package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spartan077/Taxi-Share/internal/model"
	"github.com/spartan077/Taxi-Share/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims представляет JWT claims для нашей системы
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`   // USER | ADMIN
	Gender string `json:"gender"` // male | female | ""
	jwt.RegisteredClaims
}

// Viewer — текущий пользователь, как его видит бизнес-логика
func (c *Claims) Viewer() Viewer {
	return Viewer{UserID: c.UserID, Role: c.Role, Gender: c.Gender}
}

// JWTService работает с JWT токенами
type JWTService struct {
	secret        []byte
	expiryMinutes int
	now           func() time.Time
}

// NewJWTService создает новый сервис для работы с JWT
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:        []byte(cfg.Secret),
		expiryMinutes: cfg.ExpiryMinutes,
		now:           time.Now,
	}
}

// GenerateToken создает новый JWT токен для пользователя
func (s *JWTService) GenerateToken(userID, email, role, gender string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := s.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Gender: gender,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "taxi-share",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken проверяет токен и возвращает claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer("taxi-share"), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}

	return claims, nil
}

// ExtractUserID извлекает user_id и роль (для WebSocket аутентификации)
func (s *JWTService) ExtractUserID(tokenString string) (userID, role string, err error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}
