package domain

// Read models, resolved to a single language.

type CountrySummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capital  string `json:"capital"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	PhotoURL string `json:"photoUrl"`
}

type CountryDetail struct {
	CountrySummary
	Description string      `json:"description"`
	VideoURL    string      `json:"videoUrl"`
	Sights      []SightView `json:"sights"`
}

type SightView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PhotoURL    string       `json:"photoUrl"`
	Ratings     []UserRating `json:"ratings"`
}

// CountryRatings is the setRating result: every sight's ratings, not only the
// one that changed.
type CountryRatings struct {
	ID     string         `json:"id"`
	Sights []SightRatings `json:"sights"`
}

type SightRatings struct {
	ID      string       `json:"id"`
	Ratings []UserRating `json:"ratings"`
}
