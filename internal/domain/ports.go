package domain

import (
	"context"
	"io"
	"time"
)

type CountryRepository interface {
	// Read paths. lang filters to countries carrying a name in that language;
	// an empty lang disables the filter.
	ListCountries(ctx context.Context, lang string, limit int) ([]Country, error)
	GetCountry(ctx context.Context, id, lang string) (Country, error)
	GetCountryMeta(ctx context.Context, id string) (CountryMeta, error)

	// Write paths
	// UpdateCountry persists c only if the stored version still equals c.Version,
	// and bumps it. Returns ErrConflict otherwise.
	UpdateCountry(ctx context.Context, c Country) error
	// UpsertCountry inserts or replaces c wholesale (seeding).
	UpsertCountry(ctx context.Context, c Country) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) error
	GetUserByLogin(ctx context.Context, login string) (User, error)
}

type CountryMetaClient interface {
	GetByAlpha2(ctx context.Context, code string) (map[string]any, error)
}

type LoginThrottle interface {
	Blocked(ctx context.Context, login string) (bool, error)
	Failed(ctx context.Context, login string) (int64, error)
	Reset(ctx context.Context, login string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type PhotoStore interface {
	// Save stores the upload and returns its public URL path.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}
