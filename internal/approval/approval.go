// Package approval prompts the user when a verdict is ask and the
// process is attached to a terminal. Non-interactive sessions deny.
package approval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

// Prompt carries everything the user needs to judge an ask verdict.
type Prompt struct {
	Summary     string
	RiskLevel   string
	RiskTags    []string
	Evidence    []string
	Explanation string
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{
			Approved:   false,
			UserAction: "auto_deny_non_interactive",
		}
	}
	Render(os.Stderr, p)
	return ReadChoice(os.Stdin, os.Stderr)
}

// Render writes the prompt banner, the action summary, and the risk
// findings that triggered the ask.
func Render(w io.Writer, p Prompt) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║              ⚠️  APPROVAL REQUIRED                            ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Action: %s\n", p.Summary)

	risk := p.RiskLevel
	if risk == "" {
		risk = "unknown"
	}
	if len(p.RiskTags) > 0 {
		fmt.Fprintf(w, "Risk:   %s [%s]\n", risk, strings.Join(p.RiskTags, ", "))
	} else {
		fmt.Fprintf(w, "Risk:   %s\n", risk)
	}

	if len(p.Evidence) > 0 {
		fmt.Fprintln(w, "Findings:")
		for _, line := range p.Evidence {
			fmt.Fprintf(w, "  • %s\n", line)
		}
	}
	if p.Explanation != "" {
		fmt.Fprintf(w, "Reason: %s\n", p.Explanation)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  [a] Approve once - allow this action")
	fmt.Fprintln(w, "  [d] Deny - block this action")
	fmt.Fprintln(w, "")
}

// ReadChoice loops until the user picks approve or deny. A read error
// (closed stdin, EOF) denies.
func ReadChoice(in io.Reader, w io.Writer) Result {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(w, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{
				Approved:   false,
				UserAction: "error_reading_input",
			}
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "a", "approve", "yes", "y":
			return Result{
				Approved:   true,
				UserAction: "approve_once",
			}
		case "d", "deny", "no", "n":
			return Result{
				Approved:   false,
				UserAction: "deny",
			}
		default:
			fmt.Fprintln(w, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}
