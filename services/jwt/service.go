package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrMalformedToken   = errors.New("malformed JWT token")
	ErrInvalidSignature = errors.New("invalid JWT token signature")
	ErrTokenRevoked     = errors.New("JWT token has been revoked")
	ErrWrongTokenType   = errors.New("wrong JWT token type")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	// TypeAnon marks the public key the SPA presents as its Authorization
	// bearer when calling the function routes. It carries no user identity.
	TypeAnon = "anon"
)

type Claims struct {
	UserID    uint   `json:"user_id,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}

type RevocationService interface {
	IsTokenRevoked(jti string) (bool, error)
	RevokeJTI(jti string, expiresAt time.Time) error
}

type Service struct {
	config            *config.Config
	logger            *logging.Service
	revocationService RevocationService
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) SetRevocationService(revocationService RevocationService) {
	s.revocationService = revocationService
}

func (s *Service) newClaims(userID uint, role, tokenType string, expiry time.Duration) Claims {
	now := time.Now()
	jti := uuid.New().String()
	return Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		JTI:       jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{s.config.JWT.Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func (s *Service) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign JWT token", zap.Error(err), zap.String("type", claims.TokenType))
		}
		return "", fmt.Errorf("failed to generate JWT token: %w", err)
	}
	return tokenString, nil
}

func (s *Service) GenerateAccessToken(userID uint, role string) (string, error) {
	return s.sign(s.newClaims(userID, role, TypeAccess, s.config.JWT.AccessExpiry))
}

func (s *Service) GenerateRefreshToken(userID uint, role string) (string, error) {
	return s.sign(s.newClaims(userID, role, TypeRefresh, s.config.JWT.RefreshExpiry))
}

// GenerateAnonKey issues the long-lived public key embedded in the SPA. It
// authenticates the frontend as a caller, not any particular user.
func (s *Service) GenerateAnonKey() (string, error) {
	return s.sign(s.newClaims(0, "anon", TypeAnon, s.config.JWT.AnonExpiry))
}

func (s *Service) GetAccessExpirySeconds() int {
	return int(s.config.JWT.AccessExpiry.Seconds())
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.JWT.SecretKey), nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("JWT token validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if s.revocationService != nil {
		revoked, err := s.revocationService.IsTokenRevoked(claims.JTI)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to check token revocation status", zap.Error(err))
			}
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// ValidateTokenOfType additionally pins the token_type claim so an anon key
// can never stand in for a user access token or vice versa.
func (s *Service) ValidateTokenOfType(tokenString, tokenType string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *Service) RevokeToken(tokenString string) error {
	if s.revocationService == nil {
		if s.logger != nil {
			s.logger.Warn("token revocation requested but revocation service not available")
		}
		return nil
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			return nil
		}
		return err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revocationService.RevokeJTI(claims.JTI, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
