package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/adapters/observability"
	"travel_guide/internal/domain"
)

type AuthService struct {
	users    domain.UserRepository
	hasher   domain.PasswordHasher
	tokens   domain.TokenIssuer
	photos   domain.PhotoStore
	throttle domain.LoginThrottle
}

func NewAuthService(u domain.UserRepository, h domain.PasswordHasher, t domain.TokenIssuer, p domain.PhotoStore, th domain.LoginThrottle) *AuthService {
	return &AuthService{users: u, hasher: h, tokens: t, photos: p, throttle: th}
}

type RegisterInput struct {
	Login    string
	Password string
	Name     string

	// optional; Photo is read only when non-nil
	Photo    io.Reader
	PhotoExt string
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)

	_, err := s.users.GetUserByLogin(ctx, in.Login)
	switch {
	case err == nil:
		return domain.User{}, domain.ErrLoginTaken
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, err
	}

	var photoURL string
	if in.Photo != nil && s.photos != nil {
		photoURL, err = s.photos.Save(ctx, "photo."+in.PhotoExt, in.Photo)
		if err != nil {
			return domain.User{}, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           domain.NewID(),
		Login:        in.Login,
		PasswordHash: hash,
		DisplayName:  in.Name,
		PhotoURL:     photoURL,
		CreatedAt:    time.Now().UTC(),
	}
	// the unique index catches a registration racing the lookup above
	if err := s.users.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	log.Info().Str("user", u.ID).Str("login", u.Login).Msg("user registered")
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (LoginResult, error) {
	if s.blocked(ctx, login) {
		observability.ObserveLogin("throttled")
		return LoginResult{}, domain.ErrTooManyAttempts
	}

	u, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.failed(ctx, login)
			observability.ObserveLogin("unknown_user")
		}
		return LoginResult{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.failed(ctx, login)
		observability.ObserveLogin("bad_password")
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, login); err != nil {
			log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}
	observability.ObserveLogin("ok")
	return LoginResult{Token: token, ExpiresAt: exp, UserID: u.ID, Name: u.DisplayName}, nil
}

// The throttle fails open: an unreachable Redis must not lock everyone out.
func (s *AuthService) blocked(ctx context.Context, login string) bool {
	if s.throttle == nil {
		return false
	}
	b, err := s.throttle.Blocked(ctx, login)
	if err != nil {
		log.Warn().Err(err).Msg("login throttle unavailable")
		return false
	}
	return b
}

func (s *AuthService) failed(ctx context.Context, login string) {
	if s.throttle == nil {
		return
	}
	if _, err := s.throttle.Failed(ctx, login); err != nil {
		log.Warn().Err(err).Msg("login throttle unavailable")
	}
}
