package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeFrameLines decodes JSON-lines play output.
func decodeFrameLines(t *testing.T, out string) []SampleFrame {
	t.Helper()
	var frames []SampleFrame
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var frame SampleFrame
		require.NoError(t, json.Unmarshal([]byte(line), &frame), "line: %s", line)
		frames = append(frames, frame)
	}
	return frames
}

func TestPlay_FixedFrameCount(t *testing.T) {
	path := writeDocument(t)

	out, _, err := runCommand(t, "play", path, "--fps", "2", "--max-frames", "5")
	require.NoError(t, err)

	frames := decodeFrameLines(t, out)
	require.Len(t, frames, 5)

	// 2 fps at speed 1: the playhead advances 0.5 per tick.
	assert.Equal(t, 0.0, frames[0].Time)
	assert.Equal(t, 0.5, frames[1].Time)
	assert.Equal(t, 1.0, frames[2].Time)
	assert.Equal(t, 1.5, frames[3].Time)
	assert.Equal(t, 2.0, frames[4].Time)

	// The tween tracks the playhead.
	assert.InDelta(t, 0.0, scalarNumber(t, frames[0].Objects[0], "x"), 1e-9)
	assert.InDelta(t, 50.0, scalarNumber(t, frames[2].Objects[0], "x"), 1e-9)
	assert.InDelta(t, 100.0, scalarNumber(t, frames[4].Objects[0], "x"), 1e-9)
}

func TestPlay_SpeedScalesDelta(t *testing.T) {
	path := writeDocument(t)

	out, _, err := runCommand(t, "play", path, "--fps", "2", "--speed", "2", "--max-frames", "3")
	require.NoError(t, err)

	frames := decodeFrameLines(t, out)
	require.Len(t, frames, 3)
	assert.Equal(t, 0.0, frames[0].Time)
	assert.Equal(t, 1.0, frames[1].Time)
	assert.Equal(t, 2.0, frames[2].Time)
}

func TestPlay_DefaultFrameCountCoversDuration(t *testing.T) {
	path := writeDocument(t)

	out, _, err := runCommand(t, "play", path, "--fps", "1")
	require.NoError(t, err)

	// Duration 10 at 1 fps: one pass plus the starting frame.
	frames := decodeFrameLines(t, out)
	assert.Len(t, frames, 11)
}

func TestPlay_NoExtendWraps(t *testing.T) {
	path := writeDocument(t)

	out, _, err := runCommand(t, "play", path, "--fps", "1", "--no-extend", "--max-frames", "12")
	require.NoError(t, err)

	frames := decodeFrameLines(t, out)
	require.Len(t, frames, 12)
	// Tick 10 reaches the 10s duration and wraps the playhead to 0.
	assert.Equal(t, 9.0, frames[9].Time)
	assert.Equal(t, 0.0, frames[10].Time)
	assert.Equal(t, 1.0, frames[11].Time)
}

func TestPlay_AutoExtendKeepsAdvancing(t *testing.T) {
	path := writeDocument(t)

	out, _, err := runCommand(t, "play", path, "--fps", "1", "--max-frames", "13")
	require.NoError(t, err)

	// With auto-extension the playhead never wraps.
	frames := decodeFrameLines(t, out)
	require.Len(t, frames, 13)
	assert.Equal(t, 12.0, frames[12].Time)
}

func TestPlay_FlagErrors(t *testing.T) {
	path := writeDocument(t)

	_, _, err := runCommand(t, "play", path, "--fps", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = runCommand(t, "play", path, "--speed", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
