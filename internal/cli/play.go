package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyline/keyline/internal/playback"
)

type playOptions struct {
	fps       int
	speed     float64
	noExtend  bool
	maxFrames int
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a document, emitting one frame snapshot per tick",
		Long: `Step the playhead through a document at a fixed frame rate and emit
the interpolated frame state after each tick, one JSON object per line.

Frames are driven by synthetic fixed-step ticks, so the output is
deterministic for a given document and flag set. --speed scales how
much timeline time each tick covers; near the timeline end the
duration auto-extends unless --no-extend is set, in which case
playback wraps to 0.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.fps, "fps", 30, "frames per second")
	cmd.Flags().Float64Var(&opts.speed, "speed", 1.0, "playback speed multiplier")
	cmd.Flags().BoolVar(&opts.noExtend, "no-extend", false, "wrap at the timeline end instead of extending it")
	cmd.Flags().IntVar(&opts.maxFrames, "max-frames", 0, "stop after this many frames (0 = one pass over the duration)")

	return cmd
}

func runPlay(rootOpts *RootOptions, opts *playOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.fps <= 0 {
		err := fmt.Errorf("--fps must be > 0")
		_ = formatter.Error("COMMAND_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	if opts.speed <= 0 {
		err := fmt.Errorf("--speed must be > 0")
		_ = formatter.Error("COMMAND_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	m, err := loadDocument(formatter, file)
	if err != nil {
		return err
	}

	sched := playback.New(m, playback.WithAutoExtend(!opts.noExtend))
	sched.Play()
	defer sched.Stop()

	// Speed scales the timeline delta per tick, not the model's viewport
	// zoom; the engine never sees the multiplier.
	delta := opts.speed / float64(opts.fps)

	maxFrames := opts.maxFrames
	if maxFrames <= 0 {
		// One pass: frames until the playhead crosses the initial
		// duration once, plus the starting frame.
		maxFrames = int(m.Duration()/delta) + 1
	}
	formatter.VerboseLog("Playing %s: %d frame(s) at %d fps, speed %gx", file, maxFrames, opts.fps, opts.speed)

	enc := json.NewEncoder(formatter.Writer)
	ctx := cmd.Context()
	for frame := 0; frame < maxFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return WrapExitError(ExitCommandError, "playback interrupted", err)
		}
		if err := enc.Encode(buildFrame(m, m.CurrentTime())); err != nil {
			return WrapExitError(ExitCommandError, "encoding frame", err)
		}
		sched.Tick(delta)
	}
	return nil
}
