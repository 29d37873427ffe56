package detect

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// shellShape is what the AST inspection extracts from a command line:
// whether the command is a single plain call, and which constructs make it
// something more.
type shellShape struct {
	parsed        bool
	hasPipe       bool
	hasChain      bool // && || ;
	hasCmdSubst   bool // $(...) or backticks
	hasRedirect   bool
	hasSubshell   bool
	hasBackground bool
}

// injectionRisk reports whether any construct present can smuggle extra
// execution into an apparently simple command.
func (s shellShape) injectionRisk() bool {
	return s.hasPipe || s.hasChain || s.hasCmdSubst || s.hasSubshell || s.hasBackground
}

// parseShell inspects the command with a real bash parser. An unparseable
// command returns parsed=false and the caller falls back to the character
// class check alone.
func parseShell(command string) shellShape {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return shellShape{}
	}

	shape := shellShape{parsed: true}
	if len(file.Stmts) > 1 {
		shape.hasChain = true
	}
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.BinaryCmd:
			switch n.Op {
			case syntax.Pipe, syntax.PipeAll:
				shape.hasPipe = true
			case syntax.AndStmt, syntax.OrStmt:
				shape.hasChain = true
			}
		case *syntax.CmdSubst:
			shape.hasCmdSubst = true
		case *syntax.Subshell:
			shape.hasSubshell = true
		case *syntax.Redirect:
			shape.hasRedirect = true
		case *syntax.Stmt:
			if n.Background {
				shape.hasBackground = true
			}
		}
		return true
	})
	return shape
}
