package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pos-backend/internal/config"
	"pos-backend/internal/models"
	"pos-backend/internal/policy"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Superuser bool   `json:"is_superuser"`
	Staff     bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() policy.Principal {
	return policy.Principal{UserID: c.UserID, Superuser: c.Superuser, Staff: c.Staff}
}

// Tokens issues and verifies HS256 access/refresh token pairs.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(cfg *config.Config) *Tokens {
	return &Tokens{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (t *Tokens) Issue(user *models.User) (Pair, error) {
	access, err := t.sign(user, TokenAccess, t.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.sign(user, TokenRefresh, t.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Access signs a new access token carrying the claims of a refresh token.
func (t *Tokens) Access(refresh *Claims) (string, error) {
	user := &models.User{
		ID:          refresh.UserID,
		Email:       refresh.Email,
		IsSuperuser: refresh.Superuser,
		IsStaff:     refresh.Staff,
	}
	return t.sign(user, TokenAccess, t.accessTTL)
}

func (t *Tokens) sign(user *models.User, kind string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Superuser: user.IsSuperuser,
		Staff:     user.IsStaff,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

var ErrInvalidToken = errors.New("token is invalid or expired")

// Parse verifies the signature, expiry and type of a token. An empty kind
// accepts either type.
func (t *Tokens) Parse(raw, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	if kind != "" && claims.TokenType != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
