package domain

const (
	MinRating = 1
	MaxRating = 5
)

// Country is the root aggregate: it owns its sights, and each sight owns its
// ratings. Version is the optimistic-concurrency token checked on update.
type Country struct {
	ID          string    `json:"id"`
	Name        Localized `json:"name"`
	Capital     Localized `json:"capital"`
	Description Localized `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	VideoURL    string    `json:"videoUrl"`
	Timezone    string    `json:"timezone"`
	Currency    string    `json:"currency"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Alpha2Code  string    `json:"alpha2Code"`
	Sights      []Sight   `json:"sights"`
	Version     int64     `json:"version"`
}

type Sight struct {
	ID          string       `json:"id"`
	Name        Localized    `json:"name"`
	Description Localized    `json:"description"`
	PhotoURL    string       `json:"photoUrl"`
	Ratings     []UserRating `json:"userRating"`
}

type UserRating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// CountryMeta is the capital metadata projection.
type CountryMeta struct {
	ID       string
	Timezone string
	Currency string
}

// RatingOutcome reports what SetRating did to the aggregate.
type RatingOutcome int

const (
	RatingUnchanged RatingOutcome = iota
	RatingUpdated
	RatingInserted
)

func (o RatingOutcome) String() string {
	switch o {
	case RatingUpdated:
		return "updated"
	case RatingInserted:
		return "inserted"
	default:
		return "unchanged"
	}
}

// Mutated is true when the aggregate has to be persisted.
func (o RatingOutcome) Mutated() bool { return o != RatingUnchanged }

func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }

// SetRating upserts userID's rating on the sight in place. A user keeps at most
// one entry per sight; rewriting the same value leaves the aggregate untouched.
func (c *Country) SetRating(sightID, userID string, rating int) (RatingOutcome, error) {
	if !ValidRating(rating) {
		return RatingUnchanged, ErrInvalidRating
	}
	s := c.sight(sightID)
	if s == nil {
		return RatingUnchanged, ErrSightNotFound
	}
	for i := range s.Ratings {
		if s.Ratings[i].UserID != userID {
			continue
		}
		if s.Ratings[i].Rating == rating {
			return RatingUnchanged, nil
		}
		s.Ratings[i].Rating = rating
		return RatingUpdated, nil
	}
	s.Ratings = append(s.Ratings, UserRating{UserID: userID, Rating: rating})
	return RatingInserted, nil
}

func (c *Country) sight(id string) *Sight {
	for i := range c.Sights {
		if c.Sights[i].ID == id {
			return &c.Sights[i]
		}
	}
	return nil
}
