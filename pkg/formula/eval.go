package formula

import (
	"errors"
	"strconv"
)

// Token kinds for the expression tokenizer.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	op    byte    // for tokOp: '+', '-', '*', '/', or 'm' for unary minus
	value float64 // for tokNumber
}

var (
	errEmptyExpr  = errors.New("empty expression")
	errBadExpr    = errors.New("malformed expression")
	errDivByZero  = errors.New("division by zero")
	errParenMatch = errors.New("unbalanced parentheses")
)

// tokenize scans a normalized expression. Unary plus is dropped; unary minus
// becomes the dedicated operator 'm' so precedence can be handled in the
// shunting yard.
func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9' || c == '.':
			j := i
			dots := 0
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				if s[j] == '.' {
					dots++
				}
				j++
			}
			if dots > 1 {
				return nil, errBadExpr
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, errBadExpr
			}
			toks = append(toks, token{kind: tokNumber, value: v})
			i = j

		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++

		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++

		case c == '+' || c == '-':
			unary := len(toks) == 0 ||
				toks[len(toks)-1].kind == tokOp ||
				toks[len(toks)-1].kind == tokLParen
			if unary {
				if c == '-' {
					toks = append(toks, token{kind: tokOp, op: 'm'})
				}
				// unary plus is a no-op
			} else {
				toks = append(toks, token{kind: tokOp, op: c})
			}
			i++

		case c == '*' || c == '/':
			toks = append(toks, token{kind: tokOp, op: c})
			i++

		default:
			return nil, errBadExpr
		}
	}
	return toks, nil
}

func precedence(op byte) int {
	switch op {
	case 'm':
		return 3
	case '*', '/':
		return 2
	case '+', '-':
		return 1
	}
	return 0
}

func rightAssoc(op byte) bool { return op == 'm' }

// toRPN converts a token stream to reverse Polish notation via the classic
// shunting-yard algorithm.
func toRPN(toks []token) ([]token, error) {
	var out []token
	var stack []token
	for _, t := range toks {
		switch t.kind {
		case tokNumber:
			out = append(out, t)
		case tokOp:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != tokOp {
					break
				}
				if precedence(top.op) > precedence(t.op) ||
					(precedence(top.op) == precedence(t.op) && !rightAssoc(t.op)) {
					out = append(out, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, t)
		case tokLParen:
			stack = append(stack, t)
		case tokRParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, errParenMatch
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLParen {
			return nil, errParenMatch
		}
		out = append(out, top)
	}
	return out, nil
}

// evalRPN evaluates an RPN token stream.
func evalRPN(rpn []token) (float64, error) {
	var stack []float64
	for _, t := range rpn {
		switch t.kind {
		case tokNumber:
			stack = append(stack, t.value)
		case tokOp:
			if t.op == 'm' {
				if len(stack) < 1 {
					return 0, errBadExpr
				}
				stack[len(stack)-1] = -stack[len(stack)-1]
				continue
			}
			if len(stack) < 2 {
				return 0, errBadExpr
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			var v float64
			switch t.op {
			case '+':
				v = a + b
			case '-':
				v = a - b
			case '*':
				v = a * b
			case '/':
				if b == 0 {
					return 0, errDivByZero
				}
				v = a / b
			}
			stack = append(stack, v)
		}
	}
	if len(stack) != 1 {
		return 0, errBadExpr
	}
	return stack[0], nil
}
