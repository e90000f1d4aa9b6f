package syntax

import (
	"strings"

	"github.com/anmitsu/go-shlex"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokSemi
	tokAmp
	tokAndIf
	tokOrIf
	tokPipe
	tokIn
	tokOut
	tokOutApp
	tokErr
	tokErrApp
	tokOutErr
	tokOutErrApp
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokSemi:
		return ";"
	case tokAmp:
		return "&"
	case tokAndIf:
		return "&&"
	case tokOrIf:
		return "||"
	case tokPipe:
		return "|"
	case tokIn:
		return "<"
	case tokOut:
		return ">"
	case tokOutApp:
		return ">>"
	case tokErr:
		return "2>"
	case tokErrApp:
		return "2>>"
	case tokOutErr:
		return "&>"
	case tokOutErrApp:
		return "&>>"
	default:
		return "?"
	}
}

type token struct {
	kind tokenKind
	text string // raw word with quotes preserved; empty for operators
}

// lex splits a line into operator and word tokens. Operator characters
// inside quotes are literal. The text between operators is split into
// words with shlex in non-POSIX mode so the quote characters survive;
// stripping them is the evaluator's job.
//
// A "2" immediately before ">" forms a stderr redirection only when the
// 2 is a whole word: "echo 2>f" redirects stderr, "echo a2>f" passes
// the word a2 and redirects stdout.
func lex(line string) ([]token, error) {
	var (
		toks      []token
		run       []byte // pending text since the last operator
		wordStart int    // offset in run of the current word
		quote     byte   // active quote character, 0 outside quotes
	)

	flush := func() error {
		text := string(run)
		run = run[:0]
		wordStart = 0

		if strings.TrimSpace(text) == "" {
			return nil
		}
		words, err := shlex.Split(text, false)
		if err != nil {
			return err
		}
		for _, w := range words {
			toks = append(toks, token{kind: tokWord, text: w})
		}
		return nil
	}

	emit := func(kind tokenKind) error {
		if err := flush(); err != nil {
			return err
		}
		toks = append(toks, token{kind: kind})
		return nil
	}

	peek := func(i int) byte {
		if i+1 < len(line) {
			return line[i+1]
		}
		return 0
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if quote != 0 {
			run = append(run, c)
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"':
			quote = c
			run = append(run, c)

		case ' ', '\t':
			run = append(run, c)
			wordStart = len(run)

		case ';':
			if err := emit(tokSemi); err != nil {
				return nil, err
			}

		case '|':
			kind := tokPipe
			if peek(i) == '|' {
				kind = tokOrIf
				i++
			}
			if err := emit(kind); err != nil {
				return nil, err
			}

		case '&':
			kind := tokAmp
			switch peek(i) {
			case '&':
				kind = tokAndIf
				i++
			case '>':
				kind = tokOutErr
				i++
				if peek(i) == '>' {
					kind = tokOutErrApp
					i++
				}
			}
			if err := emit(kind); err != nil {
				return nil, err
			}

		case '<':
			if err := emit(tokIn); err != nil {
				return nil, err
			}

		case '>':
			kind := tokOut
			if peek(i) == '>' {
				kind = tokOutApp
				i++
			}
			if string(run[wordStart:]) == "2" {
				run = run[:wordStart]
				if kind == tokOutApp {
					kind = tokErrApp
				} else {
					kind = tokErr
				}
			}
			if err := emit(kind); err != nil {
				return nil, err
			}

		default:
			run = append(run, c)
		}
	}

	// An unterminated quote reaches here with quote != 0; flush hands
	// the run to shlex, which reports the missing close.
	if err := flush(); err != nil {
		return nil, err
	}

	return toks, nil
}
