package weather

// currentWeatherResponse mirrors the current-weather endpoint. Main is nil when
// the service answers with an error body.
type currentWeatherResponse struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
	Main    *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main,omitempty"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// errorBody is the shape of a non-200 answer. cod is a string or a number
// depending on the endpoint, so it is not decoded.
type errorBody struct {
	Message string `json:"message"`
}
