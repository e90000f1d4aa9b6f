package syntax

import (
	"errors"
	"fmt"
)

// ErrEmpty reports a line containing no commands at all. Callers
// typically skip such lines rather than surfacing an error.
var ErrEmpty = errors.New("empty command line")

// Parse turns a single command line into a command tree.
//
// Grammar, lowest to highest precedence, all left-associative:
//
//	sequence: parallel (';' parallel)*    trailing ';' tolerated
//	parallel: andor ('&' andor)*
//	andor:    pipeline (('&&'|'||') pipeline)*
//	pipeline: simple ('|' simple)*
//	simple:   (word | redirect word)+
//
// Background execution is not part of the language, so '&' is strictly
// binary and a trailing '&' is a syntax error.
func Parse(line string) (Node, error) {
	toks, err := lex(line)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, ErrEmpty
	}

	p := &parser{toks: toks}
	node, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("unexpected %q", tok.kind.String())
	}
	return node, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// match consumes the next token when it has the given kind.
func (p *parser) match(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseSequence() (Node, error) {
	left, err := p.parseParallel()
	if err != nil {
		return nil, err
	}

	for p.match(tokSemi) {
		if _, ok := p.peek(); !ok {
			break // trailing ';'
		}
		right, err := p.parseParallel()
		if err != nil {
			return nil, err
		}
		left = &BinaryCommand{Op: Sequential, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseParallel() (Node, error) {
	left, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}

	for p.match(tokAmp) {
		right, err := p.parseAndOr()
		if err != nil {
			return nil, missingOperand(err, tokAmp)
		}
		left = &BinaryCommand{Op: Parallel, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAndOr() (Node, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}

	for {
		var op Op
		switch {
		case p.match(tokAndIf):
			op = And
		case p.match(tokOrIf):
			op = Or
		default:
			return left, nil
		}

		right, err := p.parsePipeline()
		if err != nil {
			if op == And {
				return nil, missingOperand(err, tokAndIf)
			}
			return nil, missingOperand(err, tokOrIf)
		}
		left = &BinaryCommand{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parsePipeline() (Node, error) {
	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}

	for p.match(tokPipe) {
		right, err := p.parseSimple()
		if err != nil {
			return nil, missingOperand(err, tokPipe)
		}
		left = &BinaryCommand{Op: Pipe, Left: left, Right: right}
	}
	return left, nil
}

// errNoCommand marks "the next token cannot start a command" so the
// operator productions can blame the operator instead.
var errNoCommand = errors.New("missing command")

func missingOperand(err error, after tokenKind) error {
	if errors.Is(err, errNoCommand) {
		return fmt.Errorf("missing command after %q", after.String())
	}
	return err
}

func (p *parser) parseSimple() (Node, error) {
	cmd := &SimpleCommand{}
	any := false
	haveVerb := false

loop:
	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		switch tok.kind {
		case tokWord:
			p.pos++
			if !haveVerb {
				cmd.Verb = tok.text
				haveVerb = true
			} else {
				cmd.Args = append(cmd.Args, tok.text)
			}

		case tokIn, tokOut, tokOutApp, tokErr, tokErrApp, tokOutErr, tokOutErrApp:
			p.pos++
			target, ok := p.peek()
			if !ok || target.kind != tokWord {
				return nil, fmt.Errorf("missing redirection target after %q", tok.kind.String())
			}
			p.pos++

			switch tok.kind {
			case tokIn:
				cmd.In = target.text
			case tokOut:
				cmd.Out, cmd.AppendOut = target.text, false
			case tokOutApp:
				cmd.Out, cmd.AppendOut = target.text, true
			case tokErr:
				cmd.Err, cmd.AppendErr = target.text, false
			case tokErrApp:
				cmd.Err, cmd.AppendErr = target.text, true
			case tokOutErr:
				cmd.Out, cmd.Err = target.text, target.text
				cmd.AppendOut, cmd.AppendErr = false, false
			case tokOutErrApp:
				cmd.Out, cmd.Err = target.text, target.text
				cmd.AppendOut, cmd.AppendErr = true, true
			}

		default:
			break loop
		}
		any = true
	}

	if !any {
		return nil, errNoCommand
	}
	return cmd, nil
}
