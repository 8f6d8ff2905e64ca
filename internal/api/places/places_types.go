package places

import "github.com/FACorreiaa/go-travel-assistant/internal/types"

// textSearchResponse mirrors the JSON body of the text-search endpoint.
type textSearchResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Geometry         struct {
		Location types.Location `json:"location"`
	} `json:"geometry"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos,omitempty"`
}

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

func (p placeResult) toRecord() types.PlaceRecord {
	rec := types.PlaceRecord{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		PriceLevel:       p.PriceLevel,
		Location:         p.Geometry.Location,
	}
	if len(p.Photos) > 0 {
		rec.PhotoReference = p.Photos[0].PhotoReference
	}
	return rec
}
