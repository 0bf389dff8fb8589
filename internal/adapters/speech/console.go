// Package speech provides the listen, synthesize and play adapters.
package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ConsoleInput implements ports.SpeechInput by reading typed lines. It
// stands in for a microphone and recognizer; transcripts are lower-cased
// the same way.
type ConsoleInput struct {
	in     io.Reader
	prompt io.Writer

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewConsoleInput reads from in. When prompt is non-nil, "You: " is written
// to it before each line.
func NewConsoleInput(in io.Reader, prompt io.Writer) *ConsoleInput {
	return &ConsoleInput{in: in, prompt: prompt, lines: make(chan lineResult)}
}

// Listen returns the next line, lower-cased and trimmed. It returns io.EOF
// when the input is exhausted.
func (c *ConsoleInput) Listen(ctx context.Context) (string, error) {
	c.once.Do(func() { go c.read() })

	if c.prompt != nil {
		fmt.Fprint(c.prompt, "You: ")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return r.text, r.err
	}
}

// read owns the reader. It runs until the input ends.
func (c *ConsoleInput) read() {
	defer close(c.lines)
	reader := bufio.NewReader(c.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			c.lines <- lineResult{text: strings.ToLower(strings.TrimSpace(line))}
		}
		if err != nil {
			if err != io.EOF {
				c.lines <- lineResult{err: err}
			}
			return
		}
	}
}
