// Package expand implements the Mini-Shell word transformations: dollar
// variable expansion and quote stripping.
//
// The rules are deliberately small. Expansion knows a single form, $NAME,
// where NAME is the longest run of ASCII letters, digits and underscores
// after the dollar. There are no braces, no escapes and no recursion.
// Quote stripping removes every single and double quote without pairing
// them up; matching quotes is the tokenizer's problem, not ours.
package expand

import "strings"

// isNameByte reports whether c can appear in a variable name.
func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// Expand substitutes $NAME references in s using getenv. Unset variables
// expand to nothing. A dollar followed by no name characters is consumed
// and produces nothing. Everything else copies through verbatim.
func Expand(getenv func(string) string, s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			out.WriteByte(s[i])
			continue
		}

		// Take the maximal name run after the dollar.
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		if name := s[i+1 : j]; name != "" {
			out.WriteString(getenv(name))
		}
		i = j - 1
	}

	return out.String()
}

// StripQuotes removes every ' and " from s regardless of pairing.
func StripQuotes(s string) string {
	if !strings.ContainsAny(s, `'"`) {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != '\'' && c != '"' {
			out.WriteByte(c)
		}
	}
	return out.String()
}
