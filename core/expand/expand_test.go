package expand

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testGetenv(key string) string {
	vars := map[string]string{
		"USER":     "mihai",
		"HOME":     "/home/mihai",
		"EXT":      "txt",
		"_private": "hidden",
		"A1":       "one",
	}
	return vars[key]
}

func TestExpand(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"no dollar":            {"hello world", "hello world"},
		"whole word":           {"$USER", "mihai"},
		"embedded":             {"hi $USER!", "hi mihai!"},
		"maximal run":          {"$USERX", ""},
		"run stops at symbol":  {"$USER-x", "mihai-x"},
		"unset is empty":       {"$NOPE", ""},
		"lone dollar":          {"$", ""},
		"dollar before symbol": {"a$-b", "a-b"},
		"dollar at end":        {"cost: 5$", "cost: 5"},
		"adjacent names":       {"$USER$EXT", "mihaitxt"},
		"underscore name":      {"$_private", "hidden"},
		"digits in name":       {"$A1", "one"},
		"dollar dollar":        {"$$USER", "mihai"},
		"path like":            {"$HOME/docs/a.$EXT", "/home/mihai/docs/a.txt"},
		"empty input":          {"", ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Expand(testGetenv, tc.in))
		})
	}
}

func TestStripQuotes(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"no quotes":       {"plain", "plain"},
		"paired double":   {`"hello"`, "hello"},
		"paired single":   {"'hello'", "hello"},
		"mixed unpaired":  {`a"b'c`, "abc"},
		"only quotes":     {`"'"`, ""},
		"interior quotes": {`ab"cd"ef`, "abcdef"},
		"empty":           {"", ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripQuotes(tc.in))
		})
	}
}

func ExampleExpand() {
	getenv := func(key string) string {
		if key == "NAME" {
			return "world"
		}
		return ""
	}

	fmt.Println(Expand(getenv, "hello $NAME"))
	fmt.Println(Expand(getenv, "hello $MISSING!"))
	// Output: hello world
	// hello !
}

func ExampleStripQuotes() {
	fmt.Println(StripQuotes(`ls "My Documents"`))
	// Output: ls My Documents
}
