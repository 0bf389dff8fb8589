package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoPlayer means no audio player command could be found.
var ErrNoPlayer = errors.New("no audio player found")

// CommandPlayer implements ports.AudioPlayer by running an external player
// and waiting for it to finish.
type CommandPlayer struct {
	command string
	args    []string
}

// candidates lists players tried in order when none is configured. The
// file path is appended to each argument list.
func candidates(goos string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"afplay"}}
	case "windows":
		return [][]string{{"powershell", "-NoProfile", "-Command", "Start-Process -Wait"}}
	default:
		return [][]string{
			{"mpg123", "-q"},
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
			{"mpv", "--no-video", "--really-quiet"},
			{"cvlc", "--play-and-exit", "--quiet"},
		}
	}
}

// NewCommandPlayer creates a player. command may include arguments, e.g.
// "mpv --no-video"; empty picks the first installed player for the
// platform.
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	return newCommandPlayer(command, runtime.GOOS, exec.LookPath)
}

func newCommandPlayer(command, goos string, lookPath func(string) (string, error)) (*CommandPlayer, error) {
	if fields := strings.Fields(command); len(fields) > 0 {
		return &CommandPlayer{command: fields[0], args: fields[1:]}, nil
	}
	for _, c := range candidates(goos) {
		if _, err := lookPath(c[0]); err == nil {
			return &CommandPlayer{command: c[0], args: c[1:]}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Command returns the command line used for path.
func (p *CommandPlayer) Command(path string) []string {
	line := append([]string{p.command}, p.args...)
	return append(line, path)
}

// Play blocks until the player exits.
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	line := p.Command(path)
	cmd := exec.CommandContext(ctx, line[0], line[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", p.command, err, msg)
		}
		return fmt.Errorf("%s: %w", p.command, err)
	}
	return nil
}
