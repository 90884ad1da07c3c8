package auth

import (
	"fmt"
	"time"

	"social-leaderboard/backend-api/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type authService struct {
	config config.Config
	logger *zap.Logger
}

func NewAuthService(cfg config.Config, logger *zap.Logger) Service {
	return &authService{
		config: cfg,
		logger: logger,
	}
}

func (s *authService) GenerateAccessToken(accountID int64) (string, error) {
	if accountID <= 0 {
		return "", ErrInvalidAccountID
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", accountID),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.AccessExpiration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWT.Secret))
}

func (s *authService) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigning
		}
		return []byte(s.config.JWT.Secret), nil
	})
	if err != nil {
		s.logger.Debug("token parse failed", zap.Error(err))
		return nil, err
	}
	if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
