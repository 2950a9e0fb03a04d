package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/claude/ironcycle/internal/upload"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <day> <session.log>",
		Short: "Send a session log to a remote IronCycle server (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			if serverURL == "" {
				return fmt.Errorf("--server is required")
			}
			apiKey, _ := cmd.Flags().GetString("api-key")
			if apiKey == "" {
				apiKey = os.Getenv("IRONCYCLE_API_KEY")
			}
			day, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[0])
			}

			var log []byte
			if args[1] == "-" {
				log, err = io.ReadAll(cmd.InOrStdin())
			} else {
				log, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("reading session log: %w", err)
			}

			client := upload.NewClient(serverURL, apiKey)
			var id uuid.UUID
			if raw, _ := cmd.Flags().GetString("workout"); raw != "" {
				if id, err = uuid.Parse(raw); err != nil {
					return fmt.Errorf("invalid workout ID %q: %w", raw, err)
				}
			} else {
				w, err := client.ActiveWorkout(cmd.Context())
				if err != nil {
					return err
				}
				id = w.ID
			}

			result, err := client.PushSession(cmd.Context(), id, day, log)
			if err != nil {
				return err
			}
			if result.Day != nil {
				printDayResult(cmd.OutOrStdout(), result.Day)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			}
			return nil
		},
	}
	cmd.Flags().String("server", "", "IronCycle server URL (e.g. http://ironcycle.tail1234.ts.net)")
	cmd.Flags().String("api-key", "", "API key for mutations (defaults to IRONCYCLE_API_KEY)")
	return cmd
}
