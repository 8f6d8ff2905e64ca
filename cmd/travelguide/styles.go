package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Padding(0, 1)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

func renderPlaces(w io.Writer, places []types.PlaceCard) {
	for i, p := range places {
		fmt.Fprintf(w, "%s %s\n", metaStyle.Render(strconv.Itoa(i+1)+"."), nameStyle.Render(p.Name))
		if p.FormattedAddress != "" {
			fmt.Fprintf(w, "   %s\n", p.FormattedAddress)
		}
		fmt.Fprintf(w, "   %s\n", metaStyle.Render(ratingLine(p.PlaceRecord)))
		if p.PhotoURL != "" {
			fmt.Fprintf(w, "   photo: %s\n", linkStyle.Render(p.PhotoURL))
		}
		fmt.Fprintf(w, "   map:   %s\n\n", linkStyle.Render(p.MapURL))
	}
}

func ratingLine(p types.PlaceRecord) string {
	rating := "N/A"
	if p.Rating != nil {
		rating = strconv.FormatFloat(*p.Rating, 'f', 1, 64)
	}
	line := "Rating: " + rating
	if p.UserRatingsTotal != nil {
		line += fmt.Sprintf(" (%d reviews)", *p.UserRatingsTotal)
	}
	if p.PriceLevel != nil {
		line += " | Price: " + strings.Repeat("$", max(*p.PriceLevel, 1))
	}
	return line
}

func renderWeather(w io.Writer, s *types.WeatherSummary) {
	fmt.Fprintln(w, headerStyle.Render("Weather in "+s.Location))
	fmt.Fprintf(w, "%s, %.1f°C (feels like %.1f°C), humidity %d%%\n", s.Condition, s.TemperatureCelsius, s.FeelsLikeCelsius, s.HumidityPercent)
	fmt.Fprintln(w, assistantStyle.Render(s.Advice))
}

func renderWarning(w io.Writer, msg string) {
	if msg != "" {
		fmt.Fprintln(w, warningStyle.Render(msg))
	}
}
