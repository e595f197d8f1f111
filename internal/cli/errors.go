package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/example/presidium/internal/core/procerr"
)

// FormatError renders a command failure for the terminal. Procedural errors
// show their code and metadata; anything else is printed as is.
func FormatError(err error) string {
	code := procerr.CodeOf(err)
	if code == "" {
		return color.New(color.FgRed).Sprintf("Error: %v", err)
	}

	var b strings.Builder
	b.WriteString(codeColor(code).Sprintf("✗ %s", code))
	fmt.Fprintf(&b, ": %v", err)

	var pe *procerr.Error
	if errors.As(err, &pe) && len(pe.Metadata) > 0 {
		keys := make([]string, 0, len(pe.Metadata))
		for k := range pe.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n  %s: %s", k, pe.Metadata[k])
		}
	}
	if hint := codeHint(code); hint != "" {
		b.WriteString("\n")
		b.WriteString(color.New(color.FgHiBlack).Sprint("Hint: " + hint))
	}
	return b.String()
}

func codeColor(code procerr.Code) *color.Color {
	switch code {
	case procerr.CodeNotFound, procerr.CodeInvalidArgument:
		return color.New(color.FgYellow)
	case procerr.CodeConcurrentModification:
		return color.New(color.FgHiMagenta)
	default:
		return color.New(color.FgRed)
	}
}

func codeHint(code procerr.Code) string {
	switch code {
	case procerr.CodeQuorumNotMet:
		return "run a roll call or mark more countries present and voting"
	case procerr.CodeOutOfTurn:
		return "check whose turn it is with: presidium voting show <voting-id>"
	case procerr.CodeConcurrentModification:
		return "another presidium member changed this record; retry the command"
	default:
		return ""
	}
}
