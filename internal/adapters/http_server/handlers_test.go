package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "travel_guide/internal/adapters/http_server"
	"travel_guide/internal/app"
	"travel_guide/internal/domain"
)

const (
	countryID = "65a1b2c3d4e5f60718293a4b"
	sightID   = "65a1b2c3d4e5f60718293a4c"
	userID    = "65a1b2c3d4e5f60718293a4d"
)

type stubCatalog struct {
	gotLimit int
	gotLang  string
	err      error
}

func (s *stubCatalog) ListSummaries(_ context.Context, limit int, lang string) ([]domain.CountrySummary, error) {
	s.gotLimit, s.gotLang = limit, lang
	if s.err != nil {
		return nil, s.err
	}
	return []domain.CountrySummary{{ID: countryID, Name: "Italy", Capital: "Rome"}}, nil
}

func (s *stubCatalog) GetDetail(_ context.Context, id, lang string) (domain.CountryDetail, error) {
	s.gotLang = lang
	if s.err != nil {
		return domain.CountryDetail{}, s.err
	}
	return domain.CountryDetail{CountrySummary: domain.CountrySummary{ID: id, Name: "Italy"}}, nil
}

func (s *stubCatalog) GetTimezone(context.Context, string) (string, error) {
	return "UTC+01:00", s.err
}

func (s *stubCatalog) GetCurrency(context.Context, string) (string, error) {
	return "EUR", s.err
}

type stubRatings struct {
	calls int
	err   error
}

func (s *stubRatings) SetRating(_ context.Context, cID, sID, uID string, rating int) (domain.CountryRatings, error) {
	s.calls++
	if s.err != nil {
		return domain.CountryRatings{}, s.err
	}
	return domain.CountryRatings{ID: cID, Sights: []domain.SightRatings{{
		ID:      sID,
		Ratings: []domain.UserRating{{UserID: uID, Rating: rating}},
	}}}, nil
}

type stubAccounts struct {
	got      app.RegisterInput
	photo    []byte
	err      error
	loginErr error
}

func (s *stubAccounts) Register(_ context.Context, in app.RegisterInput) (domain.User, error) {
	s.got = in
	if in.Photo != nil {
		s.photo, _ = io.ReadAll(in.Photo)
	}
	if s.err != nil {
		return domain.User{}, s.err
	}
	return domain.User{ID: userID, Login: in.Login, DisplayName: in.Name}, nil
}

func (s *stubAccounts) Login(context.Context, string, string) (app.LoginResult, error) {
	if s.loginErr != nil {
		return app.LoginResult{}, s.loginErr
	}
	return app.LoginResult{Token: "tok-" + userID, UserID: userID, Name: "Marco"}, nil
}

type stubTokens struct{}

func (stubTokens) Issue(id string) (string, time.Time, error) { return "tok-" + id, time.Time{}, nil }

func (stubTokens) Verify(tok string) (string, error) {
	if len(tok) > 4 && tok[:4] == "tok-" {
		return tok[4:], nil
	}
	return "", errors.New("bad token")
}

type fixture struct {
	catalog  *stubCatalog
	ratings  *stubRatings
	accounts *stubAccounts
	srv      *httptest.Server
	uploads  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:  &stubCatalog{},
		ratings:  &stubRatings{},
		accounts: &stubAccounts{},
		uploads:  t.TempDir(),
	}
	s := httpserver.New(httpserver.Options{RequestTimeout: 5 * time.Second})
	s.MountHandlers(&httpserver.Handlers{
		Catalog:        f.catalog,
		Ratings:        f.ratings,
		Accounts:       f.accounts,
		Tokens:         stubTokens{},
		UploadsDir:     f.uploads,
		UploadMaxBytes: 1 << 20,
	})
	f.srv = httptest.NewServer(s.Mux())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) post(t *testing.T, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestCountries_DefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.post(t, "/api/countries", "", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, f.catalog.gotLimit)
	assert.Equal(t, "en", f.catalog.gotLang)

	resp, _ = f.post(t, "/api/countries", "", map[string]any{"countriesNum": 3, "reloadLang": "de"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, f.catalog.gotLimit)
	assert.Equal(t, "de", f.catalog.gotLang)

	resp, body := f.post(t, "/api/countries", "", map[string]any{"reloadLang": "fr"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "reloadLang", errs[0].(map[string]any)["field"])
}

func TestCountryDetailed_NotFoundIs404(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.post(t, "/api/countryDetailed", "", map[string]any{"countryID": countryID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.catalog.err = domain.ErrCountryNotFound
	resp, body := f.post(t, "/api/countryDetailed", "", map[string]any{"countryID": countryID})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Country not found", body["message"])

	resp, _ = f.post(t, "/api/countryDetailed", "", map[string]any{"countryID": "nope"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCountryDetailed_IntegrityFaultIs500(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = domain.ErrMissingLocalization
	resp, body := f.post(t, "/api/countryDetailed", "", map[string]any{"countryID": countryID})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Something went wrong, try again", body["message"])
}

func TestTimezoneAndCurrency(t *testing.T) {
	f := newFixture(t)

	resp, body := f.post(t, "/api/timezone", "", map[string]any{"countryID": countryID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "UTC+01:00", body["timezone"])

	resp, body = f.post(t, "/api/currency", "", map[string]any{"countryID": countryID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EUR", body["currency"])
}

func TestRating_RequiresMatchingToken(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{"countryID": countryID, "sightID": sightID, "userID": userID, "rating": 4}

	resp, msg := f.post(t, "/api/rating", "", body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "The user is not logged in", msg["message"])

	resp, _ = f.post(t, "/api/rating", "garbage", body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.post(t, "/api/rating", "tok-65a1b2c3d4e5f60718293a4e", body)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.ratings.calls)

	resp, out := f.post(t, "/api/rating", "tok-"+userID, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, countryID, out["id"])
	assert.Equal(t, 1, f.ratings.calls)
}

func TestRating_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		rating int
		err    error
		status int
	}{
		{"out of range", 6, nil, http.StatusBadRequest},
		{"missing sight", 3, domain.ErrSightNotFound, http.StatusBadRequest},
		{"lost race", 3, domain.ErrConflict, http.StatusConflict},
		{"store down", 3, errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.ratings.err = tc.err
			resp, _ := f.post(t, "/api/rating", "tok-"+userID, map[string]any{
				"countryID": countryID, "sightID": sightID, "userID": userID, "rating": tc.rating,
			})
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRegister_JSON(t *testing.T) {
	f := newFixture(t)

	resp, body := f.post(t, "/auth/register", "", map[string]any{"login": "marco_1", "password": "secret", "name": "  Marco "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User successfully registered", body["message"])
	assert.Equal(t, userID, body["userId"])
	assert.Equal(t, "Marco", f.accounts.got.Name)

	resp, body = f.post(t, "/auth/register", "", map[string]any{"login": "bad login", "password": "123", "name": " "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Wrong registration data", body["message"])
	assert.Len(t, body["errors"], 3)

	f.accounts.err = domain.ErrLoginTaken
	resp, body = f.post(t, "/auth/register", "", map[string]any{"login": "marco", "password": "secret", "name": "Marco"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User with this login already exists", body["message"])
}

func multipartRegister(t *testing.T, url, contentType string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("login", "marco"))
	require.NoError(t, mw.WriteField("password", "secret"))
	require.NoError(t, mw.WriteField("name", "Marco"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="filedata"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(photo)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/auth/register", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegister_MultipartPhoto(t *testing.T) {
	f := newFixture(t)

	resp, _ := do(t, multipartRegister(t, f.srv.URL, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "png", f.accounts.got.PhotoExt)
	assert.Equal(t, []byte("png-bytes"), f.accounts.photo)

	f.accounts.photo = nil
	resp, _ = do(t, multipartRegister(t, f.srv.URL, "application/pdf", []byte("%PDF")))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, f.accounts.got.Photo)
	assert.Nil(t, f.accounts.photo)
}

func TestRegister_MultipartTooLarge(t *testing.T) {
	accounts := &stubAccounts{}
	s := httpserver.New(httpserver.Options{})
	s.MountHandlers(&httpserver.Handlers{Accounts: accounts, Tokens: stubTokens{}, UploadMaxBytes: 1 << 10})

	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, multipartRegister(t, "http://test", "image/png", bytes.Repeat([]byte("x"), 4<<10)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, accounts.got.Login)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	resp, body := f.post(t, "/auth/login", "", map[string]any{"login": "marco", "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok-"+userID, body["token"])
	assert.Equal(t, userID, body["userId"])
	assert.Equal(t, "Marco", body["name"])

	resp, body = f.post(t, "/auth/login", "", map[string]any{"login": "marco"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Wrong authentication data", body["message"])

	for _, tc := range []struct {
		err    error
		status int
		msg    string
	}{
		{domain.ErrUserNotFound, http.StatusBadRequest, "User not found"},
		{domain.ErrInvalidCredentials, http.StatusBadRequest, "Wrong password, try again"},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many failed attempts, try again later"},
	} {
		f.accounts.loginErr = tc.err
		resp, body = f.post(t, "/auth/login", "", map[string]any{"login": "marco", "password": "secret"})
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		assert.Equal(t, tc.msg, body["message"])
	}
}

func TestUploadsAndHealth(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.uploads, "a.png"), []byte("img"), 0o644))

	resp, err := http.Get(f.srv.URL + "/uploads/a.png")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "img", string(raw))

	resp, err = http.Get(f.srv.URL + "/uploads/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPreflightSkipsAuth(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/api/rating", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, _ := do(t, req)
	assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
