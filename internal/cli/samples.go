package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/debugmate-ai/debugmate/internal/samples"
)

// NewSamplesCmd lists the built-in sample snippets, optionally printing one.
func NewSamplesCmd() *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "List built-in sample snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if show != "" {
				sample, ok := samples.Find(show)
				if !ok {
					return fmt.Errorf("unknown sample %q", show)
				}
				fmt.Fprintln(out, sample.Code)
				return nil
			}
			for _, sample := range samples.Catalog() {
				fmt.Fprintln(out, sample.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&show, "show", "", "Print the code of the named sample")
	return cmd
}
