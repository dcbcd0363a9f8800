package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyline/keyline/internal/motion"
)

// NewEasingsCommand creates the easings command.
func NewEasingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "easings",
		Short: "List the easing function names tweens accept",
		Long: `List every easing function name a motion tween may carry. A tween
with an unrecognized or empty name falls back to linear.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			names := motion.EasingNames()
			if formatter.Format == "json" {
				return formatter.Success(names)
			}
			for _, name := range names {
				if name == motion.DefaultEasing {
					fmt.Fprintf(formatter.Writer, "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(formatter.Writer, name)
			}
			return nil
		},
	}
}
