package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ticket-lookup/config"
	"ticket-lookup/internal/client"
	"ticket-lookup/internal/tui"
)

func defaultServer(cfg *config.Config) string {
	return "http://127.0.0.1:" + cfg.Port
}

func newTUICommand(cfg *config.Config) *cobra.Command {
	var (
		server  string
		ref     string
		timeout time.Duration
	)

	command := &cobra.Command{
		Use:   "tui",
		Short: "Look up tickets and submit transfers from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := client.NewLookupClient(server, nil, timeout)
			if err != nil {
				return err
			}
			sink, err := client.NewTransferSink(server, nil, timeout)
			if err != nil {
				return err
			}

			location := server
			if ref != "" {
				location += "/?" + url.Values{"ticketId": {ref}}.Encode()
			}

			model := tui.New(tui.Options{
				Lookup:    lookup,
				Submitter: sink,
				Location:  location,
			})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}

	command.Flags().StringVar(&server, "server", defaultServer(cfg), "base url of the ticket lookup service")
	command.Flags().StringVar(&ref, "ref", "", "ticket reference to look up on start")
	command.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")
	return command
}

func newLookupCommand(cfg *config.Config) *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	command := &cobra.Command{
		Use:   "lookup REF",
		Short: "Print the ticket with the given reference as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := client.NewLookupClient(server, nil, timeout)
			if err != nil {
				return err
			}

			ticket, err := lookup.FetchTicket(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ticket)
		},
	}

	command.Flags().StringVar(&server, "server", defaultServer(cfg), "base url of the ticket lookup service")
	command.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")
	return command
}
