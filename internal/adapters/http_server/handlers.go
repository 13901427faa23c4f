package httpserver

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travel_guide/internal/adapters/uploads"
	"travel_guide/internal/app"
	"travel_guide/internal/domain"
)

type Catalog interface {
	ListSummaries(ctx context.Context, limit int, lang string) ([]domain.CountrySummary, error)
	GetDetail(ctx context.Context, countryID, lang string) (domain.CountryDetail, error)
	GetTimezone(ctx context.Context, countryID string) (string, error)
	GetCurrency(ctx context.Context, countryID string) (string, error)
}

type Ratings interface {
	SetRating(ctx context.Context, countryID, sightID, userID string, rating int) (domain.CountryRatings, error)
}

type Accounts interface {
	Register(ctx context.Context, in app.RegisterInput) (domain.User, error)
	Login(ctx context.Context, login, password string) (app.LoginResult, error)
}

type Handlers struct {
	Catalog  Catalog
	Ratings  Ratings
	Accounts Accounts
	Tokens   domain.TokenIssuer

	// UploadsDir is served under uploads.URLPrefix when set.
	UploadsDir     string
	UploadMaxBytes int64
}

const defaultUploadMaxBytes = 10 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/countries", h.listCountries)
		r.Post("/countryDetailed", h.countryDetailed)
		r.Post("/timezone", h.timezone)
		r.Post("/currency", h.currency)
		r.With(Authenticate(h.Tokens)).Post("/rating", h.setRating)
	})
	s.mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	if h.UploadsDir != "" {
		files := http.StripPrefix(uploads.URLPrefix, http.FileServer(noListing{http.Dir(h.UploadsDir)}))
		s.mux.Handle(uploads.URLPrefix+"*", files)
	}
}

func langOrDefault(l string) string {
	if l == "" {
		return domain.DefaultLanguage
	}
	return l
}

func (h *Handlers) listCountries(w http.ResponseWriter, r *http.Request) {
	var req countriesRequest
	if !bind(w, r, &req) {
		return
	}
	out, err := h.Catalog.ListSummaries(r.Context(), req.CountriesNum, langOrDefault(req.ReloadLang))
	if err != nil {
		fail(w, r, err, http.StatusNotFound, msgCountryMissing)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) countryDetailed(w http.ResponseWriter, r *http.Request) {
	var req countryRequest
	if !bind(w, r, &req) {
		return
	}
	out, err := h.Catalog.GetDetail(r.Context(), req.CountryID, langOrDefault(req.ReloadLang))
	if err != nil {
		fail(w, r, err, http.StatusNotFound, msgCountryMissing)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) timezone(w http.ResponseWriter, r *http.Request) {
	var req countryIDRequest
	if !bind(w, r, &req) {
		return
	}
	tz, err := h.Catalog.GetTimezone(r.Context(), req.CountryID)
	if err != nil {
		fail(w, r, err, http.StatusNotFound, msgCountryMissing)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"timezone": tz})
}

func (h *Handlers) currency(w http.ResponseWriter, r *http.Request) {
	var req countryIDRequest
	if !bind(w, r, &req) {
		return
	}
	cur, err := h.Catalog.GetCurrency(r.Context(), req.CountryID)
	if err != nil {
		fail(w, r, err, http.StatusNotFound, msgCountryMissing)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"currency": cur})
}

func (h *Handlers) setRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if !bind(w, r, &req) {
		return
	}
	if uid, _ := UserIDFrom(r.Context()); uid != req.UserID {
		writeError(w, http.StatusForbidden, "Rating can be set only on behalf of the logged in user", nil)
		return
	}
	out, err := h.Ratings.SetRating(r.Context(), req.CountryID, req.SightID, req.UserID, req.Rating)
	if err != nil {
		fail(w, r, err, http.StatusBadRequest, msgRatingTarget)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var (
		req registerRequest
		in  app.RegisterInput
	)
	if isMultipart(r) {
		limit := h.UploadMaxBytes
		if limit <= 0 {
			limit = defaultUploadMaxBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large", nil)
				return
			}
			writeError(w, http.StatusBadRequest, "Wrong registration data", nil)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		req = registerRequest{
			Login:    r.FormValue("login"),
			Password: r.FormValue("password"),
			Name:     r.FormValue("name"),
		}
		if f, hdr, err := r.FormFile("filedata"); err == nil {
			defer f.Close()
			// other content types are dropped without failing the registration
			if ext, ok := uploads.ExtForContentType(hdr.Header.Get("Content-Type")); ok {
				in.Photo, in.PhotoExt = f, ext
			}
		}
	} else {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Wrong registration data", nil)
			return
		}
	}

	req.Name = strings.TrimSpace(req.Name)
	if fields := validateStruct(&req); len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Wrong registration data", fields)
		return
	}

	in.Login, in.Password, in.Name = req.Login, req.Password, req.Name
	u, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrLoginTaken) {
			writeError(w, http.StatusBadRequest, "User with this login already exists", nil)
			return
		}
		fail(w, r, err, http.StatusBadRequest, "Wrong registration data")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User successfully registered",
		"userId":  u.ID,
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	fields, err := decodeJSON(r, &req)
	if err != nil || len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "Wrong authentication data", fields)
		return
	}
	res, err := h.Accounts.Login(r.Context(), req.Login, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, "User not found", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Wrong password, try again", nil)
	default:
		fail(w, r, err, http.StatusBadRequest, "User not found")
	}
}

// bind decodes and validates a JSON body, writing the 400 itself on failure.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	fields, err := decodeJSON(r, dst)
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("bad request body")
		writeError(w, http.StatusBadRequest, msgWrongRequest, nil)
		return false
	}
	if len(fields) > 0 {
		writeError(w, http.StatusBadRequest, msgWrongRequest, fields)
		return false
	}
	return true
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// noListing hides directory indexes from the uploads file server.
type noListing struct{ root http.FileSystem }

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.root.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
