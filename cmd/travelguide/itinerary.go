package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var itineraryCmd = &cobra.Command{
	Use:   "itinerary",
	Short: "Show the places selected for the itinerary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		places, err := client.Itinerary(commandContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(places) == 0 {
			fmt.Fprintln(out, metaStyle.Render("Your itinerary is empty. Add places with `travelguide places <query> --add 1`."))
			return nil
		}
		for i, p := range places {
			fmt.Fprintf(out, "%s %s %s\n", metaStyle.Render(strconv.Itoa(i+1)+"."), nameStyle.Render(p.Name), metaStyle.Render("["+p.Key()+"]"))
		}
		return nil
	},
}

var itineraryRemoveCmd = &cobra.Command{
	Use:   "remove <place-key>",
	Short: "Remove a place by its key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		if err := client.RemoveFromItinerary(commandContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
		return nil
	},
}

var itineraryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every place from the itinerary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		if err := client.ClearItinerary(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Itinerary cleared.")
		return nil
	},
}

var itineraryGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Number the selected places into an itinerary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		itinerary, err := client.GenerateItinerary(commandContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Your Itinerary"))
		for _, stop := range itinerary.Stops {
			fmt.Fprintf(out, "%s %s\n", nameStyle.Render(fmt.Sprintf("%d.", stop.Order)), stop.Place.Name)
			fmt.Fprintf(out, "   %s\n", linkStyle.Render(stop.MapURL))
		}
		return nil
	},
}

func init() {
	itineraryCmd.AddCommand(itineraryRemoveCmd, itineraryClearCmd, itineraryGenerateCmd)
	rootCmd.AddCommand(itineraryCmd)
}
