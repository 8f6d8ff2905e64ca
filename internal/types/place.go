package types

// Location is a latitude/longitude pair as returned by the places service.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceRecord is a normalized text-search result. Records are produced by the
// places client after the rating filter and result cap have been applied and
// are never mutated afterwards.
type PlaceRecord struct {
	PlaceID          string   `json:"place_id,omitempty"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Location         Location `json:"location"`
	PhotoReference   string   `json:"photo_reference,omitempty"`
}

// Key identifies a place inside a session. The upstream place id wins; the
// name is the fallback for results that come without one.
func (p PlaceRecord) Key() string {
	if p.PlaceID != "" {
		return p.PlaceID
	}
	return p.Name
}

// RatingOrZero treats a missing rating as 0.
func (p PlaceRecord) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// PlaceCard is a PlaceRecord plus the derived links a client renders.
type PlaceCard struct {
	PlaceRecord
	PhotoURL string `json:"photo_url,omitempty"`
	MapURL   string `json:"map_url"`
}

// PlacesSearchRequest is the query of the direct search path.
type PlacesSearchRequest struct {
	Query      string  `json:"query" validate:"required"`
	MinRating  float64 `json:"min_rating" validate:"gte=0,lte=5"`
	MaxResults int     `json:"max_results" validate:"gte=1,lte=20"`
}

type PlacesSearchResponse struct {
	Query   string      `json:"query"`
	Places  []PlaceCard `json:"places"`
	Warning string      `json:"warning,omitempty"`
}

// RecommendationResponse pairs the filtered places with the model's write-up.
type RecommendationResponse struct {
	Query          string      `json:"query"`
	Recommendation string      `json:"recommendation,omitempty"`
	Places         []PlaceCard `json:"places"`
	Warning        string      `json:"warning,omitempty"`
	Error          string      `json:"error,omitempty"`
}
