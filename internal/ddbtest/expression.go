//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements evaluator of DynamoDB condition expressions
//
//	cond    := or
//	or      := and { OR and }
//	and     := not { AND not }
//	not     := NOT not | primary
//	primary := ( cond ) | fun ( operand {, operand} ) | operand cmp operand
//	         | operand BETWEEN operand AND operand
//

package ddbtest

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkLParen
	tkRParen
	tkComma
	tkIdent
	tkName
	tkValue
	tkCmp
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(expr string) ([]token, error) {
	seq := make([]token, 0)
	rs := []rune(expr)

	isWord := func(r rune) bool {
		return r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '(':
			seq = append(seq, token{tkLParen, "("})
			i++
		case r == ')':
			seq = append(seq, token{tkRParen, ")"})
			i++
		case r == ',':
			seq = append(seq, token{tkComma, ","})
			i++
		case r == '=':
			seq = append(seq, token{tkCmp, "="})
			i++
		case r == '<':
			if i+1 < len(rs) && (rs[i+1] == '>' || rs[i+1] == '=') {
				seq = append(seq, token{tkCmp, string(rs[i : i+2])})
				i += 2
			} else {
				seq = append(seq, token{tkCmp, "<"})
				i++
			}
		case r == '>':
			if i+1 < len(rs) && rs[i+1] == '=' {
				seq = append(seq, token{tkCmp, ">="})
				i += 2
			} else {
				seq = append(seq, token{tkCmp, ">"})
				i++
			}
		case r == '#' || r == ':':
			j := i + 1
			for j < len(rs) && isWord(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("invalid placeholder at %d", i)
			}
			kind := tkName
			if r == ':' {
				kind = tkValue
			}
			seq = append(seq, token{kind, string(rs[i:j])})
			i = j
		case isWord(r):
			j := i
			for j < len(rs) && isWord(rs[j]) {
				j++
			}
			seq = append(seq, token{tkIdent, string(rs[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected symbol %q at %d", r, i)
		}
	}

	return append(seq, token{kind: tkEOF}), nil
}

// operand resolved against the item
type operand struct {
	av      types.AttributeValue
	present bool
	path    bool
}

type evaluator struct {
	seq        []token
	pos        int
	item       map[string]types.AttributeValue
	names      map[string]string
	values     map[string]types.AttributeValue
	usedNames  map[string]struct{}
	usedValues map[string]struct{}
}

// Evaluate condition expression against the item. The item is nil if it
// does not exist. Unused placeholders are reported as errors.
func Evaluate(
	expr string,
	names map[string]string,
	values map[string]types.AttributeValue,
	item map[string]types.AttributeValue,
) (bool, error) {
	seq, err := tokenize(expr)
	if err != nil {
		return false, err
	}

	ev := &evaluator{
		seq:        seq,
		item:       item,
		names:      names,
		values:     values,
		usedNames:  map[string]struct{}{},
		usedValues: map[string]struct{}{},
	}

	ok, err := ev.or()
	if err != nil {
		return false, err
	}

	if ev.peek().kind != tkEOF {
		return false, fmt.Errorf("unexpected token %q", ev.peek().text)
	}

	for k := range names {
		if _, has := ev.usedNames[k]; !has {
			return false, fmt.Errorf("value provided in ExpressionAttributeNames unused in expressions: %s", k)
		}
	}

	for k := range values {
		if _, has := ev.usedValues[k]; !has {
			return false, fmt.Errorf("value provided in ExpressionAttributeValues unused in expressions: %s", k)
		}
	}

	return ok, nil
}

func (ev *evaluator) peek() token { return ev.seq[ev.pos] }

func (ev *evaluator) next() token {
	t := ev.seq[ev.pos]
	if t.kind != tkEOF {
		ev.pos++
	}
	return t
}

func (ev *evaluator) keyword(kw string) bool {
	t := ev.peek()
	return t.kind == tkIdent && strings.EqualFold(t.text, kw)
}

func (ev *evaluator) expect(kind tokenKind, text string) error {
	t := ev.next()
	if t.kind != kind {
		return fmt.Errorf("expected %s, got %q", text, t.text)
	}
	return nil
}

// evaluation does not short-circuit so that every placeholder is validated
func (ev *evaluator) or() (bool, error) {
	acc, err := ev.and()
	if err != nil {
		return false, err
	}

	for ev.keyword("OR") {
		ev.next()
		rhs, err := ev.and()
		if err != nil {
			return false, err
		}
		acc = acc || rhs
	}
	return acc, nil
}

func (ev *evaluator) and() (bool, error) {
	acc, err := ev.not()
	if err != nil {
		return false, err
	}

	for ev.keyword("AND") {
		ev.next()
		rhs, err := ev.not()
		if err != nil {
			return false, err
		}
		acc = acc && rhs
	}
	return acc, nil
}

func (ev *evaluator) not() (bool, error) {
	if ev.keyword("NOT") {
		ev.next()
		ok, err := ev.not()
		return !ok, err
	}
	return ev.primary()
}

func (ev *evaluator) primary() (bool, error) {
	t := ev.peek()

	if t.kind == tkLParen {
		ev.next()
		ok, err := ev.or()
		if err != nil {
			return false, err
		}
		if err := ev.expect(tkRParen, ")"); err != nil {
			return false, err
		}
		return ok, nil
	}

	if t.kind == tkIdent && ev.seq[ev.pos+1].kind == tkLParen {
		return ev.function()
	}

	lhs, err := ev.operand()
	if err != nil {
		return false, err
	}

	if ev.keyword("BETWEEN") {
		ev.next()
		lo, err := ev.operand()
		if err != nil {
			return false, err
		}
		if !ev.keyword("AND") {
			return false, fmt.Errorf("expected AND at BETWEEN")
		}
		ev.next()
		hi, err := ev.operand()
		if err != nil {
			return false, err
		}
		return compare(">=", lhs, lo) && compare("<=", lhs, hi), nil
	}

	cmp := ev.next()
	if cmp.kind != tkCmp {
		return false, fmt.Errorf("expected comparator, got %q", cmp.text)
	}

	rhs, err := ev.operand()
	if err != nil {
		return false, err
	}

	return compare(cmp.text, lhs, rhs), nil
}

func (ev *evaluator) function() (bool, error) {
	fun := ev.next().text
	ev.next()

	args := make([]operand, 0, 2)
	for {
		arg, err := ev.operand()
		if err != nil {
			return false, err
		}
		args = append(args, arg)

		if ev.peek().kind == tkComma {
			ev.next()
			continue
		}
		if err := ev.expect(tkRParen, ")"); err != nil {
			return false, err
		}
		break
	}

	switch fun {
	case "attribute_exists":
		if len(args) != 1 || !args[0].path {
			return false, fmt.Errorf("invalid %s arguments", fun)
		}
		return args[0].present, nil
	case "attribute_not_exists":
		if len(args) != 1 || !args[0].path {
			return false, fmt.Errorf("invalid %s arguments", fun)
		}
		return !args[0].present, nil
	case "begins_with":
		if len(args) != 2 {
			return false, fmt.Errorf("invalid %s arguments", fun)
		}
		return beginsWith(args[0], args[1]), nil
	default:
		return false, fmt.Errorf("unsupported function %s", fun)
	}
}

func (ev *evaluator) operand() (operand, error) {
	t := ev.next()
	switch t.kind {
	case tkName:
		attr, has := ev.names[t.text]
		if !has {
			return operand{}, fmt.Errorf("undefined attribute name %s", t.text)
		}
		ev.usedNames[t.text] = struct{}{}
		av, has := ev.item[attr]
		return operand{av: av, present: has, path: true}, nil
	case tkValue:
		av, has := ev.values[t.text]
		if !has {
			return operand{}, fmt.Errorf("undefined attribute value %s", t.text)
		}
		ev.usedValues[t.text] = struct{}{}
		return operand{av: av, present: true}, nil
	case tkIdent:
		av, has := ev.item[t.text]
		return operand{av: av, present: has, path: true}, nil
	default:
		return operand{}, fmt.Errorf("expected operand, got %q", t.text)
	}
}

func beginsWith(a, prefix operand) bool {
	if !a.present || !prefix.present {
		return false
	}

	switch v := a.av.(type) {
	case *types.AttributeValueMemberS:
		p, ok := prefix.av.(*types.AttributeValueMemberS)
		return ok && strings.HasPrefix(v.Value, p.Value)
	case *types.AttributeValueMemberB:
		p, ok := prefix.av.(*types.AttributeValueMemberB)
		return ok && bytes.HasPrefix(v.Value, p.Value)
	default:
		return false
	}
}

// compare operands, missing attribute makes any comparison false
func compare(op string, a, b operand) bool {
	if !a.present || !b.present {
		return false
	}

	switch op {
	case "=":
		return equal(a.av, b.av)
	case "<>":
		return !equal(a.av, b.av)
	}

	ord, ok := order(a.av, b.av)
	if !ok {
		return false
	}

	switch op {
	case "<":
		return ord < 0
	case "<=":
		return ord <= 0
	case ">":
		return ord > 0
	case ">=":
		return ord >= 0
	default:
		return false
	}
}

func equal(a, b types.AttributeValue) bool {
	if ord, ok := order(a, b); ok {
		return ord == 0
	}
	return reflect.DeepEqual(a, b)
}

// order of scalar values S, N and B of same type
func order(a, b types.AttributeValue) (int, bool) {
	switch x := a.(type) {
	case *types.AttributeValueMemberS:
		y, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		return strings.Compare(x.Value, y.Value), true
	case *types.AttributeValueMemberB:
		y, ok := b.(*types.AttributeValueMemberB)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x.Value, y.Value), true
	case *types.AttributeValueMemberN:
		y, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		rx, okx := new(big.Rat).SetString(x.Value)
		ry, oky := new(big.Rat).SetString(y.Value)
		if !okx || !oky {
			return 0, false
		}
		return rx.Cmp(ry), true
	default:
		return 0, false
	}
}
