package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/core/speakers"
	"github.com/example/presidium/internal/core/timer"
	"github.com/example/presidium/internal/core/voting"
)

var (
	okColor    = color.New(color.FgHiGreen)
	warnColor  = color.New(color.FgYellow)
	failColor  = color.New(color.FgRed)
	mutedColor = color.New(color.FgHiBlack)
	focusColor = color.New(color.FgHiMagenta)
)

// FormatSeconds renders a countdown as m:ss (h:mm:ss past an hour).
func FormatSeconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	d := time.Duration(secs) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func sessionStatus(s session.Status) string {
	switch s {
	case session.StatusActive:
		return okColor.Sprint(s)
	case session.StatusPaused:
		return warnColor.Sprint(s)
	case session.StatusCompleted:
		return mutedColor.Sprint(s)
	default:
		return string(s)
	}
}

func votingStatus(s voting.Status) string {
	switch s {
	case voting.StatusActive:
		return okColor.Sprint(s)
	case voting.StatusCancelled:
		return failColor.Sprint(s)
	case voting.StatusCompleted:
		return mutedColor.Sprint(s)
	default:
		return string(s)
	}
}

func attendanceStatus(s attendance.Status) string {
	switch s {
	case attendance.StatusPresentAndVoting:
		return okColor.Sprint(s)
	case attendance.StatusPresent:
		return warnColor.Sprint(s)
	default:
		return mutedColor.Sprint(s)
	}
}

func quorumLine(q attendance.Quorum) string {
	line := fmt.Sprintf("%d/%d present, %d required", q.Present, q.Total, q.Required)
	if q.HasMet {
		return okColor.Sprintf("✓ %s", line)
	}
	return failColor.Sprintf("✗ %s", line)
}

func timerState(r *timer.Reading) string {
	switch {
	case r == nil:
		return "-"
	case r.Expired:
		return failColor.Sprint("expired")
	case r.IsPaused:
		return warnColor.Sprint("paused")
	case r.IsActive:
		return okColor.Sprint("running")
	default:
		return mutedColor.Sprint("stopped")
	}
}

func timerLabel(r *timer.Reading) string {
	var parts []string
	for _, p := range []string{r.Country, r.Topic, r.Purpose, r.DebateType} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

func writeTimers(out io.Writer, readings []timer.NamedReading) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMER\tREMAINING\tTOTAL\tSTATE\tLABEL")
	fmt.Fprintln(w, "-----\t---------\t-----\t-----\t-----")
	for _, nr := range readings {
		r := nr.Reading
		if r == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t\n", nr.Name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			nr.Name, FormatSeconds(r.RemainingTime), FormatSeconds(r.TotalDuration), timerState(r), timerLabel(r))
	}
	w.Flush()
}

func writeSpeakers(out io.Writer, lists speakers.Lists, current *speakers.CurrentSpeaker) {
	currentCountry := ""
	if current != nil {
		currentCountry = current.Country
	}

	fmt.Fprintf(out, "Speakers (%d present):\n", len(lists.Present))
	for _, e := range lists.Present {
		var marks []string
		if e.HasSpoken {
			marks = append(marks, "spoken")
		}
		if e.HasMovedToEnd {
			marks = append(marks, "moved")
		}
		if e.ArrivedLate {
			marks = append(marks, "late")
		}
		line := fmt.Sprintf("  %2d. %s", e.Position, e.Country)
		if len(marks) > 0 {
			line += mutedColor.Sprintf(" [%s]", strings.Join(marks, ", "))
		}
		if e.Country == currentCountry {
			line += focusColor.Sprint(" ← speaking")
		}
		fmt.Fprintln(out, line)
	}
	if len(lists.Absent) > 0 {
		names := make([]string, len(lists.Absent))
		for i, e := range lists.Absent {
			names[i] = e.Country
		}
		fmt.Fprintf(out, "Absent: %s\n", mutedColor.Sprint(strings.Join(names, ", ")))
	}
}
