package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/adapters/observability"
	"travel_guide/internal/domain"
)

type RatingService struct {
	repo domain.CountryRepository
}

func NewRatingService(r domain.CountryRepository) *RatingService {
	return &RatingService{repo: r}
}

// SetRating loads the country aggregate, upserts the user's rating on one sight
// and writes the aggregate back only if it changed. The write is conditional on
// the version that was read; a concurrent writer in between yields
// domain.ErrConflict and nothing is retried here.
func (s *RatingService) SetRating(ctx context.Context, countryID, sightID, userID string, rating int) (domain.CountryRatings, error) {
	if !domain.ValidRating(rating) {
		observability.ObserveRating("rejected")
		return domain.CountryRatings{}, domain.ErrInvalidRating
	}

	c, err := s.repo.GetCountry(ctx, countryID, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.ObserveRating("rejected")
		}
		return domain.CountryRatings{}, err
	}

	outcome, err := c.SetRating(sightID, userID, rating)
	if err != nil {
		observability.ObserveRating("rejected")
		return domain.CountryRatings{}, err
	}

	if outcome.Mutated() {
		if err := s.repo.UpdateCountry(ctx, c); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				observability.ObserveRating("conflict")
				log.Warn().Str("country", countryID).Str("sight", sightID).Msg("rating write lost a race")
			}
			return domain.CountryRatings{}, err
		}
	}
	observability.ObserveRating(outcome.String())
	return projectRatings(c), nil
}
