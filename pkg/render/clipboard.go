package render

import (
	"fmt"
	"io"
	"os"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// OSC52Clipboard copies text by writing an OSC 52 sequence to the terminal.
type OSC52Clipboard struct {
	out io.Writer
}

// NewOSC52Clipboard writes sequences to out, or stdout when out is nil.
func NewOSC52Clipboard(out io.Writer) *OSC52Clipboard {
	if out == nil {
		out = os.Stdout
	}
	return &OSC52Clipboard{out: out}
}

func (c *OSC52Clipboard) Copy(text string) error {
	if _, err := fmt.Fprint(c.out, osc52.New(text)); err != nil {
		return fmt.Errorf("failed to write clipboard sequence: %w", err)
	}
	return nil
}
