package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travel_guide/internal/domain"
)

// Stored shapes. Field names follow the documents the web client was built
// against (name/capital as {lang,value} arrays, sights[].userRating).

type localizedDoc struct {
	Lang  string `bson:"lang"`
	Value string `bson:"value"`
}

type ratingDoc struct {
	UserID primitive.ObjectID `bson:"userId"`
	Rating int                `bson:"rating"`
}

type sightDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        []localizedDoc     `bson:"name"`
	Description []localizedDoc     `bson:"description"`
	PhotoURL    string             `bson:"photoUrl"`
	UserRating  []ratingDoc        `bson:"userRating"`
}

type countryDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        []localizedDoc     `bson:"name"`
	Capital     []localizedDoc     `bson:"capital"`
	Description []localizedDoc     `bson:"description"`
	PhotoURL    string             `bson:"photoUrl"`
	VideoURL    string             `bson:"videoUrl"`
	Timezone    string             `bson:"timezone"`
	Currency    string             `bson:"currency"`
	Latitude    float64            `bson:"latitude"`
	Longitude   float64            `bson:"longitude"`
	Alpha2Code  string             `bson:"alpha2Code"`
	Sights      []sightDoc         `bson:"sights"`
	Version     int64              `bson:"version"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Login     string             `bson:"login"`
	Password  string             `bson:"password"`
	Name      string             `bson:"name"`
	PhotoURL  string             `bson:"photoUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func oid(id string) (primitive.ObjectID, error) {
	o, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return o, nil
}

func toLocalizedDocs(l domain.Localized) []localizedDoc {
	out := make([]localizedDoc, 0, len(l))
	for _, ls := range l {
		out = append(out, localizedDoc{Lang: ls.Lang, Value: ls.Value})
	}
	return out
}

func fromLocalizedDocs(in []localizedDoc) domain.Localized {
	out := make(domain.Localized, 0, len(in))
	for _, d := range in {
		out = append(out, domain.LocalizedString{Lang: d.Lang, Value: d.Value})
	}
	return out
}

func toCountryDoc(c domain.Country) (countryDoc, error) {
	id, err := oid(c.ID)
	if err != nil {
		return countryDoc{}, err
	}
	d := countryDoc{
		ID:          id,
		Name:        toLocalizedDocs(c.Name),
		Capital:     toLocalizedDocs(c.Capital),
		Description: toLocalizedDocs(c.Description),
		PhotoURL:    c.PhotoURL,
		VideoURL:    c.VideoURL,
		Timezone:    c.Timezone,
		Currency:    c.Currency,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Alpha2Code:  c.Alpha2Code,
		Sights:      make([]sightDoc, 0, len(c.Sights)),
		Version:     c.Version,
	}
	for _, s := range c.Sights {
		sid, err := oid(s.ID)
		if err != nil {
			return countryDoc{}, err
		}
		sd := sightDoc{
			ID:          sid,
			Name:        toLocalizedDocs(s.Name),
			Description: toLocalizedDocs(s.Description),
			PhotoURL:    s.PhotoURL,
			UserRating:  make([]ratingDoc, 0, len(s.Ratings)),
		}
		for _, r := range s.Ratings {
			uid, err := oid(r.UserID)
			if err != nil {
				return countryDoc{}, err
			}
			sd.UserRating = append(sd.UserRating, ratingDoc{UserID: uid, Rating: r.Rating})
		}
		d.Sights = append(d.Sights, sd)
	}
	return d, nil
}

func fromCountryDoc(d countryDoc) domain.Country {
	c := domain.Country{
		ID:          d.ID.Hex(),
		Name:        fromLocalizedDocs(d.Name),
		Capital:     fromLocalizedDocs(d.Capital),
		Description: fromLocalizedDocs(d.Description),
		PhotoURL:    d.PhotoURL,
		VideoURL:    d.VideoURL,
		Timezone:    d.Timezone,
		Currency:    d.Currency,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Alpha2Code:  d.Alpha2Code,
		Sights:      make([]domain.Sight, 0, len(d.Sights)),
		Version:     d.Version,
	}
	for _, sd := range d.Sights {
		s := domain.Sight{
			ID:          sd.ID.Hex(),
			Name:        fromLocalizedDocs(sd.Name),
			Description: fromLocalizedDocs(sd.Description),
			PhotoURL:    sd.PhotoURL,
			Ratings:     make([]domain.UserRating, 0, len(sd.UserRating)),
		}
		for _, r := range sd.UserRating {
			s.Ratings = append(s.Ratings, domain.UserRating{UserID: r.UserID.Hex(), Rating: r.Rating})
		}
		c.Sights = append(c.Sights, s)
	}
	return c
}
