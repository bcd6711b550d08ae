package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/domain"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/errors"
	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/watch"
)

// updateRenderer writes watch updates for a human or a program.
type updateRenderer interface {
	Render(u watch.Update) error
}

// newRenderer returns the renderer for the given output format.
func newRenderer(format string, w io.Writer) updateRenderer {
	if format == OutputJSON {
		return &jsonRenderer{enc: json.NewEncoder(w)}
	}
	return newTextRenderer(w)
}

// jsonRenderer writes one JSON document per update. Only entries new in the
// update are included so the stream can be concatenated by the reader.
type jsonRenderer struct {
	enc *json.Encoder
}

func (r *jsonRenderer) Render(u watch.Update) error {
	return r.enc.Encode(u)
}

// watchStyles holds lipgloss styles for text output.
type watchStyles struct {
	dim     lipgloss.Style
	step    lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	header  lipgloss.Style
}

func newWatchStyles(w io.Writer) *watchStyles {
	r := lipgloss.NewRenderer(w)
	return &watchStyles{
		dim:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		step:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}),
		warn:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}),
		err:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}),
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}),
		header:  r.NewStyle().Bold(true),
	}
}

func (s *watchStyles) level(l domain.Level) lipgloss.Style {
	switch l {
	case domain.LevelError:
		return s.err
	case domain.LevelWarning:
		return s.warn
	case domain.LevelSuccess:
		return s.success
	default:
		return s.info
	}
}

// textRenderer prints status transitions, log lines and retry notices.
type textRenderer struct {
	w          io.Writer
	styles     *watchStyles
	lastStatus domain.Status
	retrying   bool
}

func newTextRenderer(w io.Writer) *textRenderer {
	return &textRenderer{w: w, styles: newWatchStyles(w)}
}

func (r *textRenderer) Render(u watch.Update) error {
	if u.Status != "" && u.Status != r.lastStatus {
		r.lastStatus = u.Status
		line := fmt.Sprintf("run %d: %s", u.RunID, u.Status)
		if u.ExternalURL != "" && u.Tick <= 1 {
			line += "  " + r.styles.dim.Render(u.ExternalURL)
		}
		if _, err := fmt.Fprintln(r.w, r.styles.header.Render(line)); err != nil {
			return err
		}
	}

	for _, e := range u.New {
		if _, err := fmt.Fprintln(r.w, r.formatEntry(e)); err != nil {
			return err
		}
	}

	switch {
	case u.Err != nil && u.Indicator == watch.IndicatorRetrying:
		if !r.retrying {
			r.retrying = true
			msg := "connection lost, retrying: " + errors.UserMessage(u.Err)
			if _, err := fmt.Fprintln(r.w, r.styles.warn.Render(msg)); err != nil {
				return err
			}
		}
	case u.Err != nil:
		if _, err := fmt.Fprintln(r.w, r.styles.err.Render(errors.UserMessage(u.Err))); err != nil {
			return err
		}
	case r.retrying:
		r.retrying = false
		if _, err := fmt.Fprintln(r.w, r.styles.dim.Render("connection restored")); err != nil {
			return err
		}
	}

	if u.Terminal && u.Err == nil {
		style := r.styles.err
		if u.Conclusion == domain.ConclusionSuccess {
			style = r.styles.success
		}
		msg := fmt.Sprintf("run %d finished: %s", u.RunID, u.Conclusion)
		if _, err := fmt.Fprintln(r.w, style.Bold(true).Render(msg)); err != nil {
			return err
		}
	}
	return nil
}

func (r *textRenderer) formatEntry(e domain.LogEntry) string {
	ts := e.Timestamp
	if t, err := domain.ParseTimestamp(e.Timestamp); err == nil {
		ts = t.UTC().Format("15:04:05.000")
	}

	line := r.styles.dim.Render(ts) + " "
	if e.Step != "" {
		line += r.styles.step.Render(e.Step) + " "
	}
	return line + r.styles.level(e.Level).Render(e.Message)
}
