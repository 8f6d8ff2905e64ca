package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start or end an assistant session",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Create a session and print its token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient(serverURL, "", timeout)
		sess, err := client.StartSession(commandContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Session "+sess.SessionID.String()))
		fmt.Fprintln(out, metaStyle.Render("expires "+sess.ExpiresAt.Local().Format("Jan 02 15:04")))
		fmt.Fprintf(out, "export TRAVELGUIDE_TOKEN=%s\n", sess.Token)
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}
		if err := client.EndSession(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session ended.")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd)
	rootCmd.AddCommand(sessionCmd)
}
