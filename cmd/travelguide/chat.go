package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var stream bool

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the assistant a question",
	Long: `Send one message, or start an interactive conversation when no message
is given. Place and weather questions are answered by the matching tool;
everything else gets a free-text reply.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			return askOnce(cmd, client, args[0], out)
		}

		fmt.Fprintln(out, metaStyle.Render("Type a message, or \"exit\" to quit."))
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, nameStyle.Render("you> "))
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			if err := askOnce(cmd, client, line, out); err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
		}
	},
}

func askOnce(cmd *cobra.Command, client *apiClient, message string, out io.Writer) error {
	ctx := commandContext(cmd)
	if stream {
		_, err := client.AskStream(ctx, message, func(chunk string) {
			fmt.Fprint(out, chunk)
		})
		fmt.Fprintln(out)
		return err
	}

	resp, err := client.Ask(ctx, message)
	if err != nil {
		return err
	}
	switch {
	case resp.Weather != nil:
		renderWeather(out, resp.Weather)
	case resp.Places != nil || resp.Warning != "":
		renderPlaces(out, resp.Places)
		renderWarning(out, resp.Warning)
	default:
		fmt.Fprintln(out, assistantStyle.Render(resp.Text))
	}
	return nil
}

func init() {
	chatCmd.Flags().BoolVar(&stream, "stream", false, "Stream a free-text reply (no tools)")
	rootCmd.AddCommand(chatCmd)
}
