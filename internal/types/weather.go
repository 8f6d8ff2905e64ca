package types

// WeatherSummary is the normalized current-weather reading for one location.
type WeatherSummary struct {
	Location           string  `json:"location"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	FeelsLikeCelsius   float64 `json:"feels_like_celsius"`
	Condition          string  `json:"condition"`
	HumidityPercent    int     `json:"humidity_percent"`
	Advice             string  `json:"advice"`
}
