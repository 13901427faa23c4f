package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"travel_guide/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	order   []string
	byID    map[string]domain.Country
	updates int
	upserts int
	failErr error

	// runs between GetCountry and UpdateCountry when set
	beforeUpdate func()
}

func newFakeRepo(cs ...domain.Country) *fakeRepo {
	f := &fakeRepo{byID: map[string]domain.Country{}}
	for _, c := range cs {
		f.order = append(f.order, c.ID)
		f.byID[c.ID] = clone(c)
	}
	return f
}

func clone(c domain.Country) domain.Country {
	out := c
	out.Sights = make([]domain.Sight, len(c.Sights))
	for i, s := range c.Sights {
		out.Sights[i] = s
		out.Sights[i].Ratings = append([]domain.UserRating(nil), s.Ratings...)
	}
	return out
}

func (f *fakeRepo) ListCountries(ctx context.Context, lang string, limit int) ([]domain.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []domain.Country
	for _, id := range f.order {
		c := f.byID[id]
		if lang != "" && !c.Name.Has(lang) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, clone(c))
	}
	return out, nil
}

func (f *fakeRepo) GetCountry(ctx context.Context, id, lang string) (domain.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return domain.Country{}, f.failErr
	}
	c, ok := f.byID[id]
	if !ok || (lang != "" && !c.Name.Has(lang)) {
		return domain.Country{}, domain.ErrCountryNotFound
	}
	return clone(c), nil
}

func (f *fakeRepo) GetCountryMeta(ctx context.Context, id string) (domain.CountryMeta, error) {
	c, err := f.GetCountry(ctx, id, "")
	if err != nil {
		return domain.CountryMeta{}, err
	}
	return domain.CountryMeta{ID: c.ID, Timezone: c.Timezone, Currency: c.Currency}, nil
}

func (f *fakeRepo) UpdateCountry(ctx context.Context, c domain.Country) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.byID[c.ID]
	if !ok {
		return domain.ErrCountryNotFound
	}
	if cur.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	f.byID[c.ID] = clone(c)
	f.updates++
	return nil
}

func (f *fakeRepo) UpsertCountry(ctx context.Context, c domain.Country) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		f.order = append(f.order, c.ID)
	}
	f.byID[c.ID] = clone(c)
	f.upserts++
	return nil
}

type fakeUsers struct {
	byLogin map[string]domain.User
}

func (f *fakeUsers) CreateUser(ctx context.Context, u domain.User) error {
	if f.byLogin == nil {
		f.byLogin = map[string]domain.User{}
	}
	if _, ok := f.byLogin[u.Login]; ok {
		return domain.ErrLoginTaken
	}
	f.byLogin[u.Login] = u
	return nil
}

func (f *fakeUsers) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	u, ok := f.byLogin[login]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

// plainHasher stores passwords with a marker prefix; bcrypt is covered in the auth adapter.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Compare(hash, p string) error {
	if hash != "h:"+p {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, time.Time, error) {
	return "tok-" + userID, time.Now().Add(time.Hour), nil
}
func (fakeTokens) Verify(token string) (string, error) { return token[4:], nil }

type fakePhotos struct{ saved []byte }

func (f *fakePhotos) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.saved = b
	return "/uploads/" + name, nil
}

type fakeThrottle struct {
	fails map[string]int64
	max   int64
	err   error
}

func (f *fakeThrottle) Blocked(ctx context.Context, login string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.fails[login] >= f.max, nil
}
func (f *fakeThrottle) Failed(ctx context.Context, login string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.fails == nil {
		f.fails = map[string]int64{}
	}
	f.fails[login]++
	return f.fails[login], nil
}
func (f *fakeThrottle) Reset(ctx context.Context, login string) error {
	delete(f.fails, login)
	return f.err
}

type fakeMeta struct {
	payloads map[string]map[string]any
	calls    int
	err      error
}

func (f *fakeMeta) GetByAlpha2(ctx context.Context, code string) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ---- fixtures ----

func loc(pairs ...string) domain.Localized {
	var l domain.Localized
	for i := 0; i+1 < len(pairs); i += 2 {
		l = append(l, domain.LocalizedString{Lang: pairs[i], Value: pairs[i+1]})
	}
	return l
}

func italy() domain.Country {
	return domain.Country{
		ID:          "c1",
		Name:        loc("en", "Italy", "ru", "Италия"),
		Capital:     loc("en", "Rome", "ru", "Рим"),
		Description: loc("en", "Boot", "ru", "Сапог"),
		PhotoURL:    "/img/it.jpg",
		VideoURL:    "https://video/it",
		Timezone:    "UTC+01:00",
		Currency:    "EUR",
		Alpha2Code:  "IT",
		Sights: []domain.Sight{
			{ID: "s1", Name: loc("en", "Colosseum", "ru", "Колизей"), Description: loc("en", "Arena", "ru", "Арена")},
			{ID: "s2", Name: loc("en", "Pantheon", "ru", "Пантеон"), Description: loc("en", "Temple", "ru", "Храм"),
				Ratings: []domain.UserRating{{UserID: "u9", Rating: 4}}},
		},
	}
}

func germany() domain.Country {
	return domain.Country{
		ID:          "c2",
		Name:        loc("en", "Germany", "de", "Deutschland"),
		Capital:     loc("en", "Berlin", "de", "Berlin"),
		Description: loc("en", "Beer", "de", "Bier"),
		Timezone:    "UTC+01:00",
		Currency:    "EUR",
	}
}
