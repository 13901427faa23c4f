package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"travel_guide/internal/domain"
)

const errDuplicateEntry = 1062

func valAlpha2(s string) any {
	if len(s) != 2 {
		return nil
	}
	return strings.ToUpper(s)
}

// Repo implements domain.CountryRepository and domain.UserRepository on MySQL.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// encodeDoc strips the column-backed fields before marshaling.
func encodeDoc(c domain.Country) ([]byte, error) {
	c.ID, c.Version = "", 0
	if c.Sights == nil {
		c.Sights = []domain.Sight{}
	}
	return json.Marshal(c)
}

func decodeDoc(id string, raw []byte, version int64) (domain.Country, error) {
	var c domain.Country
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Country{}, fmt.Errorf("decode country %s: %w", id, err)
	}
	c.ID, c.Version = id, version
	return c, nil
}

func (r *Repo) UpsertCountry(ctx context.Context, c domain.Country) error {
	doc, err := encodeDoc(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertCountrySQL, c.ID, valAlpha2(c.Alpha2Code), string(doc))
	return err
}

func (r *Repo) UpdateCountry(ctx context.Context, c domain.Country) error {
	doc, err := encodeDoc(c)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateCountrySQL, string(doc), c.ID, c.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// tell a vanished row from a lost race
	var one int
	if err := r.db.QueryRowContext(ctx, countryExistsSQL, c.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCountryNotFound
		}
		return err
	}
	return domain.ErrConflict
}

func (r *Repo) ListCountries(ctx context.Context, lang string, limit int) ([]domain.Country, error) {
	rows, err := r.db.QueryContext(ctx, listCountriesSQL, lang, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Country
	for rows.Next() {
		var (
			id      string
			raw     []byte
			version int64
		)
		if err := rows.Scan(&id, &raw, &version); err != nil {
			return nil, err
		}
		c, err := decodeDoc(id, raw, version)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetCountry(ctx context.Context, id, lang string) (domain.Country, error) {
	var row *sql.Row
	if lang == "" {
		row = r.db.QueryRowContext(ctx, getCountrySQL, id)
	} else {
		row = r.db.QueryRowContext(ctx, getCountryByLangSQL, id, lang)
	}

	var (
		gotID   string
		raw     []byte
		version int64
	)
	if err := row.Scan(&gotID, &raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Country{}, domain.ErrCountryNotFound
		}
		return domain.Country{}, err
	}
	return decodeDoc(gotID, raw, version)
}

func (r *Repo) GetCountryMeta(ctx context.Context, id string) (domain.CountryMeta, error) {
	var m domain.CountryMeta
	if err := r.db.QueryRowContext(ctx, getCountryMetaSQL, id).Scan(&m.ID, &m.Timezone, &m.Currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CountryMeta{}, domain.ErrCountryNotFound
		}
		return domain.CountryMeta{}, err
	}
	return m, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Login, u.PasswordHash, u.DisplayName, u.PhotoURL, u.CreatedAt)
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDuplicateEntry {
		return domain.ErrLoginTaken
	}
	return err
}

func (r *Repo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserByLoginSQL, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.DisplayName, &u.PhotoURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
