package main

import (
	"github.com/spf13/cobra"
)

var weatherCmd = &cobra.Command{
	Use:   "weather <location>",
	Short: "Show current weather and clothing advice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		summary, err := client.Weather(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		renderWeather(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weatherCmd)
}
