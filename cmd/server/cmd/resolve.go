package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tripline/server/internal/config"
)

func newResolveCommand(opts *globalOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "resolve MESSAGE...",
		Short: "Resolve the date context of one message and print it as JSON",
		Long: `Resolve the date context of one message without starting a server.

The message words are joined with spaces. Logs go to stderr so stdout only
carries the JSON result.`,
		Example: `  server resolve "what did I spend last weekend?"
  server resolve --at 2024-03-13T10:00:00Z "trips in the past 2 weeks"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			clientTimestamp := time.Now()
			if at != "" {
				clientTimestamp, err = time.Parse(time.RFC3339Nano, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: must be an RFC 3339 timestamp", at)
				}
			}

			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return fmt.Errorf("message must not be blank")
			}

			logger := config.NewLoggerWithWriter(cfg.Logging, cmd.ErrOrStderr())
			dc := newResolver(cfg, logger).Resolve(cmd.Context(), message, clientTimestamp)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dc)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "client timestamp the message was sent at (RFC 3339, default: now)")
	return cmd
}
