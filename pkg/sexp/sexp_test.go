package sexp

import "testing"

func Test_Sexp_01(t *testing.T) {
	checkParse(t, "symbol", "symbol")
	checkParse(t, "(a b c)", "(a b c)")
	checkParse(t, "( a ( b c ) )", "(a (b c))")
	checkParse(t, "()", "()")
}

func Test_Sexp_02(t *testing.T) {
	// Comments extend to end of line.
	checkParse(t, "(a ; ignored\n b)", "(a b)")
	// Trailing whitespace and comments after the final term are fine; files
	// always end with a newline.
	checkParse(t, "(a b)\n", "(a b)")
	checkParse(t, "(a b) ; comment\n", "(a b)")
	checkParse(t, "\n  (a b)  \n\n", "(a b)")
}

func Test_Sexp_03(t *testing.T) {
	checkParseFails(t, "(a b")
	checkParseFails(t, ")")
	checkParseFails(t, "(a) trailing")
}

func Test_Sexp_04(t *testing.T) {
	terms, err := ParseAll("(a) b (c d)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	//
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	}
}

func checkParse(t *testing.T, input string, expected string) {
	t.Helper()
	//
	term, err := Parse(input)
	if err != nil {
		t.Fatalf("parsing %q failed: %v", input, err)
	}
	//
	if term.String() != expected {
		t.Errorf("parsing %q gave %s, expected %s", input, term, expected)
	}
}

func checkParseFails(t *testing.T, input string) {
	t.Helper()
	//
	if _, err := Parse(input); err == nil {
		t.Errorf("parsing %q should have failed", input)
	}
}
