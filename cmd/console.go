package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/desertthunder/songpush/internal/tasks"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	colorInfo    = color.New(color.FgCyan)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
)

// initColors disables color when stdout is not a terminal
func initColors() {
	color.NoColor = !isTTY()
}

func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

const barTemplate = `{{ string . "prefix" }} {{ bar . }} {{ counters . }}`

// console renders pipeline updates for the headless get command.
//
// On a terminal the status updates drive a progress bar and everything else is printed once the bar finishes.
type console struct {
	w           io.Writer
	bar         *pb.ProgressBar
	suggestions []string
	pending     []string
}

func newConsole(w io.Writer, interactive bool) *console {
	c := &console{w: w}
	if interactive {
		c.bar = pb.New(0)
		c.bar.SetTotal(3)
		c.bar.SetWriter(os.Stderr)
		c.bar.SetTemplateString(barTemplate)
		c.bar.Set("prefix", "Starting")
		c.bar.Start()
	}
	return c
}

func (c *console) apply(update tasks.ProgressUpdate) {
	if update.Terminal() && c.bar != nil {
		c.bar.SetCurrent(c.bar.Total())
	}

	switch update.Kind {
	case tasks.KindStatus:
		if c.bar != nil {
			c.bar.Set("prefix", update.Message)
			c.bar.SetCurrent(int64(update.Step - 1))
			return
		}
		fmt.Fprintf(c.w, "%s %s\n", colorInfo.Sprintf("[%d/%d]", update.Step, update.Total), update.Message)
	case tasks.KindSimilar:
		c.suggestions = update.Suggestions
		if c.bar == nil {
			c.writeSuggestions()
		}
	case tasks.KindSuccess:
		line := fmt.Sprintf("%s %s\n", colorSuccess.Sprint("✓"), update.Message)
		if path, ok := update.Data.(string); ok {
			line += fmt.Sprintf("  Saved to: %s\n", path)
		}
		c.emit(line)
	case tasks.KindError:
		c.emit(fmt.Sprintf("%s An error occurred: %s\n", colorError.Sprint("✗"), update.Message))
	case tasks.KindEnableButton:
		c.finish()
	}
}

func (c *console) writeSuggestions() {
	for i := range tasks.SuggestionSlots {
		s := "None"
		if i < len(c.suggestions) {
			s = c.suggestions[i]
		}
		fmt.Fprintf(c.w, "      Similar %d: %s\n", i+1, s)
	}
}

func (c *console) emit(line string) {
	if c.bar == nil {
		io.WriteString(c.w, line)
		return
	}
	c.pending = append(c.pending, line)
}

// finish stops the bar and flushes what was held back while it was drawing.
func (c *console) finish() {
	if c.bar == nil {
		return
	}
	c.bar.SetCurrent(c.bar.Total())
	c.bar.Finish()
	c.bar = nil

	c.writeSuggestions()
	for _, line := range c.pending {
		io.WriteString(c.w, line)
	}
	c.pending = nil
}
