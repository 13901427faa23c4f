package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/domain"
)

type SeedService struct {
	meta domain.CountryMetaClient
	repo domain.CountryRepository
}

// NewSeedService: meta may be nil to store seed data as-is.
func NewSeedService(m domain.CountryMetaClient, r domain.CountryRepository) *SeedService {
	return &SeedService{meta: m, repo: r}
}

// ReadSeed decodes a JSON array of countries in the stored document shape.
func ReadSeed(r io.Reader) ([]domain.Country, error) {
	var cs []domain.Country
	if err := json.NewDecoder(r).Decode(&cs); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return cs, nil
}

// SeedCountry assigns missing ids, fills capital metadata from the metadata API
// where the seed lacks it, and writes the country wholesale.
func (s *SeedService) SeedCountry(ctx context.Context, c domain.Country) (domain.Country, error) {
	if c.ID == "" {
		c.ID = domain.NewID()
	} else if !domain.ValidID(c.ID) {
		return c, fmt.Errorf("%w: country id %q", domain.ErrInvalidID, c.ID)
	}
	for i := range c.Sights {
		if c.Sights[i].ID == "" {
			c.Sights[i].ID = domain.NewID()
		}
	}
	if !c.Name.Has(domain.DefaultLanguage) {
		log.Warn().Str("country", c.ID).Msg("seed country has no default-language name; hidden from default listings")
	}

	if s.meta != nil && needsEnrichment(c) {
		code := strings.ToUpper(c.Alpha2Code)
		meta, err := s.meta.GetByAlpha2(ctx, code)
		switch {
		case err == nil:
			if enrichCountry(&c, meta) {
				log.Debug().Str("country", c.ID).Str("alpha2", code).Msg("metadata enriched")
			}
		case errors.Is(err, domain.ErrNotFound):
			// unknown code upstream: keep the seed values
			log.Warn().Str("country", c.ID).Str("alpha2", code).Msg("no metadata upstream")
		default:
			return c, fmt.Errorf("metadata for %s: %w", code, err)
		}
	}

	c.Version = 0
	if err := s.repo.UpsertCountry(ctx, c); err != nil {
		return c, fmt.Errorf("upsert country %s: %w", c.ID, err)
	}
	return c, nil
}
