package typedsl

import (
	"fmt"
	"strconv"
	"strings"
)

// tokKind tags the fixed set of tokens the field-type DSL lexes into.
type tokKind int

const (
	tokName tokKind = iota
	tokInt
	tokCallStart
	tokEqual
	tokParamSep
	tokCallEnd
)

type token struct {
	kind tokKind
	name string
	num  int
}

func (t token) String() string {
	switch t.kind {
	case tokName:
		return fmt.Sprintf("NAME(%s)", t.name)
	case tokInt:
		return fmt.Sprintf("INT(%d)", t.num)
	case tokCallStart:
		return "'('"
	case tokEqual:
		return "'='"
	case tokParamSep:
		return "','"
	case tokCallEnd:
		return "')'"
	default:
		return "?"
	}
}

const nameChars = "abcdefghijklmnopqrstuvwxyz_"

// lex turns a field-type expression into a one-element-lookahead token
// stream. It mirrors chartos/config.py's lex()/CharClassTok/ConstantTok: an
// ordered scan with no backtracking, not a lazy generator, since Go doesn't
// need restartability here.
func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokCallStart})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokCallEnd})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokEqual})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokParamSep})
			i++
		case strings.ContainsRune(nameChars, rune(c)):
			j := i
			for j < len(expr) && strings.ContainsRune(nameChars, rune(expr[j])) {
				j++
			}
			toks = append(toks, token{kind: tokName, name: expr[i:j]})
			i = j
		case c >= '0' && c <= '9':
			j := i
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(expr[i:j])
			if err != nil {
				return nil, fmt.Errorf("invalid integer literal: %q", expr[i:j])
			}
			toks = append(toks, token{kind: tokInt, num: n})
			i = j
		default:
			return nil, fmt.Errorf("invalid char: %q", string(c))
		}
	}
	return toks, nil
}
