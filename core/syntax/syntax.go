// Package syntax defines the Mini-Shell command language: the command
// tree, the tokenizer and the parser that turns a line into a tree.
//
// The evaluator in core/interp consumes Node values and knows nothing
// about parsing, so alternative front ends (tests build trees by hand)
// plug in without touching it. Words keep their quote characters here;
// dollar expansion and quote stripping are evaluation-time concerns.
package syntax

import (
	"fmt"
	"strings"
)

// Op identifies a binary command operator.
type Op int

const (
	// Sequential runs left then right, returning right's status.
	Sequential Op = iota
	// Parallel runs both sides concurrently and waits for both.
	Parallel
	// Pipe connects left's stdout to right's stdin.
	Pipe
	// And runs right only when left succeeds.
	And
	// Or runs right only when left fails.
	Or
)

func (o Op) String() string {
	switch o {
	case Sequential:
		return ";"
	case Parallel:
		return "&"
	case Pipe:
		return "|"
	case And:
		return "&&"
	case Or:
		return "||"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Node is one node of a command tree.
type Node interface {
	node()
}

// SimpleCommand is a verb with arguments and optional redirections.
// An empty redirect target means the redirection is absent; the parser
// never produces an empty target for a redirection that was written.
type SimpleCommand struct {
	Verb string
	Args []string

	In  string
	Out string
	Err string

	AppendOut bool
	AppendErr bool
}

func (*SimpleCommand) node() {}

// BinaryCommand combines two subtrees with an operator.
type BinaryCommand struct {
	Op    Op
	Left  Node
	Right Node
}

func (*BinaryCommand) node() {}

// Dump renders a stable, human-readable form of the tree, one node per
// line, children indented. Used by golden tests and debug output.
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch node := n.(type) {
	case *BinaryCommand:
		fmt.Fprintf(b, "%sop %q\n", indent, node.Op.String())
		dump(b, node.Left, depth+1)
		dump(b, node.Right, depth+1)
	case *SimpleCommand:
		fmt.Fprintf(b, "%scmd %q [", indent, node.Verb)
		for i, arg := range node.Args {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(b, "%q", arg)
		}
		b.WriteByte(']')
		if node.In != "" {
			fmt.Fprintf(b, " <%q", node.In)
		}
		if node.Out != "" {
			if node.AppendOut {
				fmt.Fprintf(b, " >>%q", node.Out)
			} else {
				fmt.Fprintf(b, " >%q", node.Out)
			}
		}
		if node.Err != "" {
			if node.AppendErr {
				fmt.Fprintf(b, " 2>>%q", node.Err)
			} else {
				fmt.Fprintf(b, " 2>%q", node.Err)
			}
		}
		b.WriteByte('\n')
	default:
		fmt.Fprintf(b, "%sunknown node %T\n", indent, n)
	}
}
