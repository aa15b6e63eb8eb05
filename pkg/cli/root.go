// Package cli implements the medallion command line client for the lake API.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultHost is used when no flag, env var or profile names a server.
const DefaultHost = "http://localhost:8080"

// settings are the resolved global options for one invocation.
type settings struct {
	host    string
	output  string
	profile string
}

// client builds an API client for the resolved host.
func (s *settings) client() *Client {
	return NewClient(s.host)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := newRootCmd()
	err := root.Execute()
	if err == nil {
		return 0
	}
	printError(root.ErrOrStderr(), getOutputFormat(root), err)
	return 1
}

func printError(w io.Writer, output string, err error) {
	if output == formatJSON {
		body := map[string]any{"error": err.Error()}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			body["error"] = apiErr.Message
			body["http_status"] = apiErr.HTTPStatus
			body["code"] = apiErr.Code
		}
		_ = PrintJSON(w, body)
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:           "medallion",
		Short:         "Command line client for the medallion lake",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&s.host, "host", "", "Lake server URL (env MEDALLION_HOST)")
	pf.StringVarP(&s.output, "output", "o", "", "Output format: table, json or csv (env MEDALLION_OUTPUT)")
	pf.StringVar(&s.profile, "profile", "", "Config profile to use")

	root.AddCommand(
		newIngestCmd(s),
		newGenerateCmd(s),
		newTablesCmd(s),
		newShowCmd(s),
		newExportCmd(s),
		newPromoteCmd(s),
		newRunCmd(s),
		newQueryCmd(s),
		newPresetsCmd(s),
		newCatalogCmd(s),
		newLineageCmd(s),
		newJobsCmd(s),
		newHistoryCmd(s),
		newIngestionsCmd(s),
		newOverviewCmd(s),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return root
}

// resolve applies flag > env > profile > default precedence to host and
// output, writing the winners back into the persistent flags.
func (s *settings) resolve(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	cfg, err := LoadUserConfig()
	if err != nil {
		return err
	}
	if s.profile != "" {
		if _, ok := cfg.Profiles[s.profile]; !ok {
			return fmt.Errorf("profile %q not found", s.profile)
		}
		cfg.CurrentProfile = s.profile
	}
	profile := cfg.ActiveProfile()

	if !pf.Changed("host") {
		s.host = firstNonEmpty(os.Getenv("MEDALLION_HOST"), profile.Host, DefaultHost)
	}
	if !pf.Changed("output") {
		s.output = firstNonEmpty(os.Getenv("MEDALLION_OUTPUT"), profile.Output, formatTable)
	}
	s.output = strings.ToLower(s.output)
	if err := validateOutputFormat(s.output); err != nil {
		return err
	}
	return pf.Set("output", s.output)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate a shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}
