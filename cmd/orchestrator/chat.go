package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatUserID    string
	chatSessionID string
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Submit one turn from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		engine, _, _, cleanup, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := engine.SubmitTurn(cmd.Context(), chatUserID, chatSessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Response)
		if len(result.Followups) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nYou could ask next:")
			for _, f := range result.Followups {
				fmt.Fprintln(cmd.OutOrStdout(), "  - "+f)
			}
		}
		if result.Degraded {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: degraded response ("+result.DegradedReason+")")
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatUserID, "user", "local-user", "user ID")
	chatCmd.Flags().StringVar(&chatSessionID, "session", "local-session", "session ID")
}
