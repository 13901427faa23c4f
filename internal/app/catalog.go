package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/domain"
)

const DefaultCountriesLimit = 8

type CatalogService struct {
	repo domain.CountryRepository
}

func NewCatalogService(r domain.CountryRepository) *CatalogService {
	return &CatalogService{repo: r}
}

// ListSummaries returns up to limit countries that have a name in lang, in
// whatever order the store yields them.
func (s *CatalogService) ListSummaries(ctx context.Context, limit int, lang string) ([]domain.CountrySummary, error) {
	if !domain.IsSupportedLanguage(lang) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	if limit <= 0 {
		limit = DefaultCountriesLimit
	}
	cs, err := s.repo.ListCountries(ctx, lang, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CountrySummary, 0, len(cs))
	for _, c := range cs {
		sum, err := projectSummary(c, lang)
		if err != nil {
			logIntegrity(err, c.ID, lang)
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *CatalogService) GetDetail(ctx context.Context, countryID, lang string) (domain.CountryDetail, error) {
	if !domain.IsSupportedLanguage(lang) {
		return domain.CountryDetail{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	c, err := s.repo.GetCountry(ctx, countryID, lang)
	if err != nil {
		return domain.CountryDetail{}, err
	}
	d, err := projectDetail(c, lang)
	if err != nil {
		logIntegrity(err, c.ID, lang)
		return domain.CountryDetail{}, err
	}
	return d, nil
}

func (s *CatalogService) GetTimezone(ctx context.Context, countryID string) (string, error) {
	m, err := s.repo.GetCountryMeta(ctx, countryID)
	if err != nil {
		return "", err
	}
	return m.Timezone, nil
}

func (s *CatalogService) GetCurrency(ctx context.Context, countryID string) (string, error) {
	m, err := s.repo.GetCountryMeta(ctx, countryID)
	if err != nil {
		return "", err
	}
	return m.Currency, nil
}

func logIntegrity(err error, countryID, lang string) {
	if errors.Is(err, domain.ErrMissingLocalization) {
		log.Error().Err(err).Str("country", countryID).Str("lang", lang).Msg("stored country is missing a localization")
	}
}
