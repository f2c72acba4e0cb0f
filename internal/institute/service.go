package institute

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	dErrors "veridoc/pkg/domain-errors"
)

// Service implements registration, login, and token validation for issuing
// institutes. Tokens are HS256 JWTs carrying the institute id.
type Service struct {
	store      Store
	signingKey []byte
	tokenTTL   time.Duration
}

func NewService(store Store, signingKey string, tokenTTL time.Duration) *Service {
	return &Service{store: store, signingKey: []byte(signingKey), tokenTTL: tokenTTL}
}

// Register creates a new institute account.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Record, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "name, email and password are required")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &Record{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Login checks credentials and mints a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Record, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	rec, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"institute_id": rec.ID,
		"iat":          now.Unix(),
		"exp":          now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, rec, nil
}

// ValidateToken parses a bearer token and returns the institute id it was
// minted for. It satisfies the middleware TokenValidator contract.
func (s *Service) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := claims["institute_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(id), nil
}

// Get resolves an institute by id.
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.store.FindByID(ctx, id)
}
