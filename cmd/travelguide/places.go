package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	minRating  float64
	maxResults int
	addIndexes string
)

var placesCmd = &cobra.Command{
	Use:   "places <query>",
	Short: "Search places, optionally adding results to the itinerary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		resp, err := client.SearchPlaces(ctx, args[0], minRating, maxResults)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d place(s) for %q", len(resp.Places), resp.Query)))
		renderPlaces(out, resp.Places)
		renderWarning(out, resp.Warning)

		picks, err := parseIndexes(addIndexes, len(resp.Places))
		if err != nil {
			return err
		}
		for _, i := range picks {
			place := resp.Places[i-1].PlaceRecord
			added, err := client.AddToItinerary(ctx, place.Key())
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(out, "Added %s to your itinerary.\n", place.Name)
			} else {
				fmt.Fprintf(out, "%s is already in your itinerary.\n", place.Name)
			}
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Search places and ask the assistant to recommend among them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		resp, err := client.Recommend(commandContext(cmd), args[0], minRating, maxResults)
		if err != nil {
			return err
		}
		renderPlaces(out, resp.Places)
		renderWarning(out, resp.Warning)
		if resp.Error != "" {
			fmt.Fprintln(out, errorStyle.Render("recommendation unavailable: "+resp.Error))
		}
		if resp.Recommendation != "" {
			fmt.Fprintln(out, headerStyle.Render("Recommendation"))
			fmt.Fprintln(out, assistantStyle.Render(resp.Recommendation))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the queries searched in this session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		queries, err := client.History(commandContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(queries) == 0 {
			fmt.Fprintln(out, metaStyle.Render("No searches yet."))
			return nil
		}
		for i, q := range queries {
			fmt.Fprintf(out, "%s %s\n", metaStyle.Render(strconv.Itoa(i+1)+"."), q)
		}
		return nil
	},
}

// parseIndexes reads a comma separated list of 1-based result positions.
func parseIndexes(raw string, n int) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("--add: %q is not a result number between 1 and %d", part, n)
		}
		out = append(out, i)
	}
	return out, nil
}

func init() {
	for _, c := range []*cobra.Command{placesCmd, recommendCmd} {
		c.Flags().Float64Var(&minRating, "min-rating", -1, "Minimum rating 0-5 (server default when unset)")
		c.Flags().IntVar(&maxResults, "max-results", 0, "Maximum results 1-20 (server default when unset)")
	}
	placesCmd.Flags().StringVar(&addIndexes, "add", "", "Comma separated result numbers to add to the itinerary")
	rootCmd.AddCommand(placesCmd, recommendCmd, historyCmd)
}
