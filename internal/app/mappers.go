package app

import (
	"fmt"
	"sort"
	"strings"

	"travel_guide/internal/domain"
)

/********** localized projections **********/

// fieldResolver resolves several localized fields in one language and keeps the
// first failure, so a projection reads top to bottom with one error check.
type fieldResolver struct {
	lang string
	err  error
}

func (r *fieldResolver) get(field string, l domain.Localized) string {
	if r.err != nil {
		return ""
	}
	v, err := l.Resolve(r.lang)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", field, err)
	}
	return v
}

func projectSummary(c domain.Country, lang string) (domain.CountrySummary, error) {
	r := &fieldResolver{lang: lang}
	s := domain.CountrySummary{
		ID:       c.ID,
		Name:     r.get("name", c.Name),
		Capital:  r.get("capital", c.Capital),
		Currency: c.Currency,
		Timezone: c.Timezone,
		PhotoURL: c.PhotoURL,
	}
	if r.err != nil {
		return domain.CountrySummary{}, fmt.Errorf("country %s: %w", c.ID, r.err)
	}
	return s, nil
}

func projectDetail(c domain.Country, lang string) (domain.CountryDetail, error) {
	sum, err := projectSummary(c, lang)
	if err != nil {
		return domain.CountryDetail{}, err
	}
	r := &fieldResolver{lang: lang}
	d := domain.CountryDetail{
		CountrySummary: sum,
		Description:    r.get("description", c.Description),
		VideoURL:       c.VideoURL,
		Sights:         make([]domain.SightView, 0, len(c.Sights)),
	}
	for _, s := range c.Sights {
		d.Sights = append(d.Sights, domain.SightView{
			ID:          s.ID,
			Name:        r.get("sight "+s.ID+" name", s.Name),
			Description: r.get("sight "+s.ID+" description", s.Description),
			PhotoURL:    s.PhotoURL,
			Ratings:     ratingsOrEmpty(s.Ratings),
		})
	}
	if r.err != nil {
		return domain.CountryDetail{}, fmt.Errorf("country %s: %w", c.ID, r.err)
	}
	return d, nil
}

func projectRatings(c domain.Country) domain.CountryRatings {
	out := domain.CountryRatings{ID: c.ID, Sights: make([]domain.SightRatings, 0, len(c.Sights))}
	for _, s := range c.Sights {
		out.Sights = append(out.Sights, domain.SightRatings{ID: s.ID, Ratings: ratingsOrEmpty(s.Ratings)})
	}
	return out
}

// ratingsOrEmpty keeps JSON output as [] rather than null.
func ratingsOrEmpty(rs []domain.UserRating) []domain.UserRating {
	if rs == nil {
		return []domain.UserRating{}
	}
	return rs
}

/********** country metadata mapper **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstStrings: string slice at the first path that has one.
func firstStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// latLng reads a [lat, lng] pair of numbers.
func latLng(m map[string]any, paths ...string) (float64, float64, bool) {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok || len(raw) < 2 {
			continue
		}
		lat, ok1 := raw[0].(float64)
		lng, ok2 := raw[1].(float64)
		if ok1 && ok2 {
			return lat, lng, true
		}
	}
	return 0, 0, false
}

// currencyCode understands both layouts: v3 {"EUR": {...}} and v2 [{"code": "EUR"}].
func currencyCode(m map[string]any) string {
	switch v := lookupAny(m, "currencies").(type) {
	case map[string]any:
		codes := make([]string, 0, len(v))
		for code := range v {
			codes = append(codes, code)
		}
		if len(codes) == 0 {
			return ""
		}
		sort.Strings(codes) // map order is random; keep the pick stable
		return codes[0]
	case []any:
		for _, it := range v {
			if obj, ok := it.(map[string]any); ok {
				if code, ok := obj["code"].(string); ok && code != "" {
					return code
				}
			}
		}
	}
	if s, ok := lookupAny(m, "currency").(string); ok {
		return s
	}
	return ""
}

// enrichCountry fills fields the seed left empty from a metadata payload.
// Returns true if anything changed.
func enrichCountry(c *domain.Country, meta map[string]any) bool {
	changed := false
	if c.Timezone == "" {
		if tz := firstStrings(meta, "timezones", "timezone"); len(tz) > 0 {
			c.Timezone = tz[0]
			changed = true
		}
	}
	if c.Currency == "" {
		if cur := currencyCode(meta); cur != "" {
			c.Currency = cur
			changed = true
		}
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		if lat, lng, ok := latLng(meta, "latlng", "capitalInfo.latlng"); ok {
			c.Latitude, c.Longitude = lat, lng
			changed = true
		}
	}
	return changed
}

func needsEnrichment(c domain.Country) bool {
	return c.Alpha2Code != "" && (c.Timezone == "" || c.Currency == "" || (c.Latitude == 0 && c.Longitude == 0))
}
