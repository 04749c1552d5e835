package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the compiled module cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newCacheClearCmd())
	cmd.AddCommand(c.newCacheInspectCmd())
	return cmd
}

func (c *CLI) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Clear(cmd.Context(), "")
		},
	}
}

func (c *CLI) newCacheInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Show the cache entry of a source URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetString("version")
			showCode, _ := cmd.Flags().GetBool("code")

			entry, err := c.app.Inspect(cmd.Context(), "", args[0], version)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "url:      %s\n", entry.SourceURL)
			_, _ = fmt.Fprintf(w, "fetched:  %s\n", entry.FetchedAt.UTC().Format(time.RFC3339))
			if entry.ETag != "" {
				_, _ = fmt.Fprintf(w, "etag:     %s\n", entry.ETag)
			}
			if entry.LastModified != "" {
				_, _ = fmt.Fprintf(w, "modified: %s\n", entry.LastModified)
			}
			_, _ = fmt.Fprintf(w, "size:     %d bytes\n", len(entry.Content))
			if showCode {
				_, _ = fmt.Fprintf(w, "\n%s\n", entry.Content)
			}
			return nil
		},
	}
	cmd.Flags().String("version", "", "Version attribute the entry was loaded with")
	cmd.Flags().Bool("code", false, "Print the cached code")
	return cmd
}
