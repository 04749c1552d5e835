package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/xs/internal/adapters/sink"
	"go.trai.ch/xs/internal/app"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <document>",
		Short: "Compile and run the modules referenced by a page",
		Long: `Load reads an HTML document from a file, an http(s) URL or "-" for standard input,
resolves every loader script element and hands the compiled modules to a sink.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			pageURL, _ := flags.GetString("page-url")
			out, _ := flags.GetString("out")
			sinkName, _ := flags.GetString("sink")
			printOnly, _ := flags.GetBool("print")
			noCache, _ := flags.GetBool("no-cache")
			refresh, _ := flags.GetBool("refresh")
			metrics, _ := flags.GetBool("metrics")
			watch, _ := flags.GetBool("watch")
			trace, _ := flags.GetBool("trace")
			endpoint, _ := flags.GetString("endpoint")
			target, _ := flags.GetString("target")

			kind, err := sink.ParseKind(sinkName)
			if err != nil {
				return err
			}
			if printOnly {
				kind = sink.KindPrint
			}

			return c.app.Load(cmd.Context(), app.LoadOptions{
				Document: args[0],
				PageURL:  pageURL,
				Out:      out,
				Sink:     kind,
				NoCache:  noCache,
				Refresh:  refresh,
				Metrics:  metrics,
				Watch:    watch,
				Trace:    trace,
				Endpoint: endpoint,
				Target:   target,
			})
		},
	}

	cmd.Flags().String("page-url", "", "URL the document is served from, used to resolve relative hrefs")
	cmd.Flags().StringP("out", "o", "", `Write the rewritten document to a file, or "-" for stdout`)
	cmd.Flags().StringP("sink", "s", string(sink.KindRuntime), "Execution sink: runtime, document, or print")
	cmd.Flags().BoolP("print", "p", false, "Print compiled modules instead of running them (shorthand for --sink=print)")
	cmd.Flags().BoolP("no-cache", "n", false, "Skip the cache lookup for every element")
	cmd.Flags().BoolP("refresh", "r", false, "Bypass intermediate HTTP caches for every element")
	cmd.Flags().Bool("metrics", false, "Write loader metrics to stderr when done")
	cmd.Flags().BoolP("watch", "w", false, "Reload the page when the document or import map file changes")
	cmd.Flags().Bool("trace", false, "Log a line for every loader state")
	cmd.Flags().String("endpoint", "", "Override the transform endpoint origin")
	cmd.Flags().String("target", "", "Override the compile target")
	return cmd
}
