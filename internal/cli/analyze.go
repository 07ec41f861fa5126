package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/debugmate-ai/debugmate/internal/rpc"
	"github.com/debugmate-ai/debugmate/internal/samples"
)

// NewAnalyzeCmd submits a snippet to the daemon and renders the result.
func NewAnalyzeCmd(opts *Options) *cobra.Command {
	var sampleName string
	var errorMessage string
	var errorFile string
	var model string
	var apiKey string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a Python snippet via the daemon",
		Long: "Analyze reads a Python snippet from a file, stdin (\"-\"), or a built-in\n" +
			"sample, runs it through the daemon's static and AI analysis, and prints\n" +
			"the findings.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			snippet, err := readSnippet(cmd, args, sampleName)
			if err != nil {
				return err
			}

			if errorFile != "" {
				data, err := os.ReadFile(errorFile)
				if err != nil {
					return fmt.Errorf("read error file: %w", err)
				}
				errorMessage = strings.TrimSpace(string(data))
			}

			if apiKey == "" {
				apiKey = os.Getenv("OPENAI_API_KEY")
			}

			ctx := cmd.Context()
			client := newDaemonClient(cfg.Server.Addr, cfg.Server.Transport)

			sessionID, err := client.Login(ctx, cfg.Auth.Password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if apiKey != "" {
				if err := client.SetAPIKey(ctx, sessionID, apiKey); err != nil {
					return fmt.Errorf("set api key: %w", err)
				}
			}

			sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			sp.Suffix = " Analyzing code..."
			sp.Start()
			resp, err := client.Analyze(ctx, sessionID, rpc.AnalyzeRequest{
				Model:        model,
				Snippet:      snippet,
				ErrorMessage: errorMessage,
			})
			sp.Stop()
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			renderResult(cmd.OutOrStdout(), resp)

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(resp.Report), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sampleName, "sample", "", "Analyze a built-in sample snippet by name")
	cmd.Flags().StringVar(&errorMessage, "error", "", "Error message or traceback observed when running the code")
	cmd.Flags().StringVar(&errorFile, "error-file", "", "Read the error message from a file")
	cmd.Flags().StringVar(&model, "model", "", "Override the model id for this run")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key for this session (default: $OPENAI_API_KEY)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the markdown report to a file")
	return cmd
}

func readSnippet(cmd *cobra.Command, args []string, sampleName string) (string, error) {
	if sampleName != "" {
		sample, ok := samples.Find(sampleName)
		if !ok {
			return "", fmt.Errorf("unknown sample %q", sampleName)
		}
		return sample.Code, nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read snippet: %w", err)
	}
	return string(data), nil
}

func renderResult(out io.Writer, resp rpc.AnalyzeResponse) {
	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)

	heading.Fprintln(out, "Static Analysis")
	for _, issue := range resp.Issues {
		warn.Fprintf(out, "  - %s\n", issue)
	}

	if resp.Error != "" {
		fmt.Fprintln(out)
		fail.Fprintln(out, resp.Error)
		return
	}

	fmt.Fprintln(out)
	heading.Fprintln(out, "Explanation")
	fmt.Fprintln(out, resp.Explanation)

	if resp.SuggestedFix != "" {
		fmt.Fprintln(out)
		heading.Fprintln(out, "Suggested Fix")
		fmt.Fprintln(out, resp.SuggestedFix)
	}

	if resp.Tips != "" {
		fmt.Fprintln(out)
		heading.Fprintln(out, "Tips")
		fmt.Fprintln(out, resp.Tips)
	}
}
