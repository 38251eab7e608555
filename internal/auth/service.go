package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/karigarverse/karigarverse/internal/redisx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Verifier is all the HTTP layer knows about tokens: an opaque bearer
// string in, a user id out.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Service issues opaque bearer tokens backed by Redis; the token value
// carries no structure and nothing outside this package may assume one.
type Service struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	TokenTTL time.Duration
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := User{ID: uuid.NewString(), Email: email, Name: name}
	err = s.DB.QueryRow(ctx, `
		INSERT INTO users(id, email, name, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		u.ID, u.Email, u.Name, string(hash)).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Login checks the password and mints a session token with the configured
// TTL. Token lookup is a single Redis GET on every authenticated request.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u User
	var hash string
	err := s.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &hash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	key := fmt.Sprintf(redisx.KeyAuthToken, token)
	if err := s.Redis.Set(ctx, key, u.ID, s.TokenTTL).Err(); err != nil {
		return nil, "", err
	}
	return &u, token, nil
}

func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	key := fmt.Sprintf(redisx.KeyAuthToken, token)
	userID, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeyAuthToken, token)
	return s.Redis.Del(ctx, key).Err()
}
