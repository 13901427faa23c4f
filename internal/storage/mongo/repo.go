package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel_guide/internal/domain"
)

// Repo implements domain.CountryRepository and domain.UserRepository on
// MongoDB, one document per country aggregate.
type Repo struct {
	countries *mongo.Collection
	users     *mongo.Collection
}

func New(db *mongo.Database) *Repo {
	return &Repo{countries: db.Collection("countries"), users: db.Collection("users")}
}

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := cl.Ping(pctx, nil); err != nil {
		_ = cl.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return cl, cl.Database(database), nil
}

func (r *Repo) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := r.countries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name.lang", Value: 1}},
	}); err != nil {
		return fmt.Errorf("countries index: %w", err)
	}
	return nil
}

func langFilter(f bson.M, lang string) bson.M {
	if lang != "" {
		f["name.lang"] = lang
	}
	return f
}

// versionFilter also matches documents written before versioning existed.
func versionFilter(f bson.M, v int64) bson.M {
	if v == 0 {
		f["$or"] = bson.A{bson.M{"version": 0}, bson.M{"version": bson.M{"$exists": false}}}
		return f
	}
	f["version"] = v
	return f
}

func (r *Repo) ListCountries(ctx context.Context, lang string, limit int) ([]domain.Country, error) {
	cur, err := r.countries.Find(ctx, langFilter(bson.M{}, lang), options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.Country
	for cur.Next(ctx) {
		var d countryDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, fromCountryDoc(d))
	}
	return out, cur.Err()
}

func (r *Repo) GetCountry(ctx context.Context, id, lang string) (domain.Country, error) {
	o, err := oid(id)
	if err != nil {
		return domain.Country{}, domain.ErrCountryNotFound
	}
	var d countryDoc
	if err := r.countries.FindOne(ctx, langFilter(bson.M{"_id": o}, lang)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Country{}, domain.ErrCountryNotFound
		}
		return domain.Country{}, err
	}
	return fromCountryDoc(d), nil
}

func (r *Repo) GetCountryMeta(ctx context.Context, id string) (domain.CountryMeta, error) {
	o, err := oid(id)
	if err != nil {
		return domain.CountryMeta{}, domain.ErrCountryNotFound
	}
	var d struct {
		Timezone string `bson:"timezone"`
		Currency string `bson:"currency"`
	}
	opts := options.FindOne().SetProjection(bson.M{"timezone": 1, "currency": 1})
	if err := r.countries.FindOne(ctx, bson.M{"_id": o}, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.CountryMeta{}, domain.ErrCountryNotFound
		}
		return domain.CountryMeta{}, err
	}
	return domain.CountryMeta{ID: id, Timezone: d.Timezone, Currency: d.Currency}, nil
}

func (r *Repo) UpdateCountry(ctx context.Context, c domain.Country) error {
	d, err := toCountryDoc(c)
	if err != nil {
		return err
	}
	d.Version = c.Version + 1
	res, err := r.countries.ReplaceOne(ctx, versionFilter(bson.M{"_id": d.ID}, c.Version), d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := r.countries.CountDocuments(ctx, bson.M{"_id": d.ID})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCountryNotFound
	}
	return domain.ErrConflict
}

func (r *Repo) UpsertCountry(ctx context.Context, c domain.Country) error {
	d, err := toCountryDoc(c)
	if err != nil {
		return err
	}
	d.Version = 0
	_, err = r.countries.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	return err
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	o, err := oid(u.ID)
	if err != nil {
		return err
	}
	_, err = r.users.InsertOne(ctx, userDoc{
		ID:        o,
		Login:     u.Login,
		Password:  u.PasswordHash,
		Name:      u.DisplayName,
		PhotoURL:  u.PhotoURL,
		CreatedAt: u.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrLoginTaken
	}
	return err
}

func (r *Repo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	var d userDoc
	if err := r.users.FindOne(ctx, bson.M{"login": login}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return domain.User{
		ID:           d.ID.Hex(),
		Login:        d.Login,
		PasswordHash: d.Password,
		DisplayName:  d.Name,
		PhotoURL:     d.PhotoURL,
		CreatedAt:    d.CreatedAt,
	}, nil
}
