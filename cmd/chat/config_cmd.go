package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"chatrelay/internal/widget"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the saved proxy URL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the proxy URL the chat would use and where it comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := widget.OpenStore(opts.store)
			if err != nil {
				return err
			}
			defer store.Close()

			endpoint, source, ok := buildResolver(store, opts).Describe(cmd.Context())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "worker_url: not configured")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "worker_url: %s (from %s)\n", endpoint, source)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-endpoint <url>",
		Short: "Save the proxy URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid worker URL %q: must be an absolute http(s) URL", args[0])
			}

			store, err := widget.OpenStore(opts.store)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(cmd.Context(), widget.WorkerURLKey, u.String()); err != nil {
				return fmt.Errorf("failed to save worker URL: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ worker_url saved: %s\n", u.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved proxy URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := widget.OpenStore(opts.store)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), widget.WorkerURLKey); err != nil {
				return fmt.Errorf("failed to clear worker URL: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ worker_url cleared")
			return nil
		},
	})

	return cmd
}
