package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const noPlacesWarning = "No places found matching your criteria."

// recommendationPrompt lists the filtered places under the user's question
// and asks the model to write about them.
func recommendationPrompt(query string, places []types.PlaceRecord) string {
	var sb strings.Builder
	sb.WriteString(query)
	sb.WriteString("\n\nHere are some relevant places I found:\n\n")
	for i, p := range places {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, orDefault(p.Name, "No Name"))
		fmt.Fprintf(&sb, "Address: %s\n", orDefault(p.FormattedAddress, "No address available"))
		fmt.Fprintf(&sb, "Rating: %s (Based on %s reviews)\n", formatRating(p.Rating), formatInt(p.UserRatingsTotal))
		fmt.Fprintf(&sb, "Price Level: %s\n", formatInt(p.PriceLevel))
		fmt.Fprintf(&sb, "Location: (%s, %s)\n\n",
			strconv.FormatFloat(p.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Location.Lng, 'f', -1, 64))
	}
	sb.WriteString("\nPlease provide a personalized recommendation or description for these places.")
	return sb.String()
}

// itineraryMarkdown renders numbered stops, one per line.
func itineraryMarkdown(stops []types.ItineraryStop) string {
	var sb strings.Builder
	sb.WriteString("### Your Itinerary\n\n")
	for _, s := range stops {
		fmt.Fprintf(&sb, "%s ([map](%s))\n", s.Heading, s.MapURL)
	}
	return sb.String()
}

func formatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
