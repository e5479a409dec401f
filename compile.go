//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements compiler of condition tree into DynamoDB expression
//

package dynarec

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Expression is compiled condition: expression string and placeholder tables.
// Values is nil if condition has no literals.
type Expression struct {
	Condition string
	Names     map[string]string
	Values    map[string]types.AttributeValue
}

// Compile condition into expression. Attribute names are always substituted
// with placeholders, each reference allocates own placeholder.
//
//	attr_not_exists(name) ⟼ attribute_not_exists(#name), {#name: name}
//	value(x).eq_attr(name) ⟼ #name = :value0, {#name: name}, {:value0: x}
func Compile(cond Conditional, schema *Schema) (Expression, error) {
	return CompileWith(cond, schema, nil, nil)
}

// CompileWith compiles condition so that placeholders never collide with
// tokens already allocated at names and values. Only new placeholders are
// returned, input maps are not modified.
func CompileWith(
	cond Conditional,
	schema *Schema,
	names map[string]string,
	values map[string]types.AttributeValue,
) (Expression, error) {
	if cond == nil || schema == nil {
		return Expression{}, errInvalidCondition.New(fmt.Errorf("condition or schema is not defined"))
	}

	ph := newPlaceholders(names, values)
	expr, err := cond.compile(schema, ph)
	if err != nil {
		return Expression{}, err
	}

	out := Expression{Condition: expr}
	if len(ph.names) != 0 {
		out.Names = ph.names
	}
	if len(ph.values) != 0 {
		out.Values = ph.values
	}

	return out, nil
}

func (c Condition) compile(schema *Schema, ph *placeholders) (string, error) {
	switch c.op {
	case opExists, opNotExists:
		attr, err := schema.lookup(c.attr)
		if err != nil {
			return "", err
		}

		fun := "attribute_exists"
		if c.op == opNotExists {
			fun = "attribute_not_exists"
		}
		return fun + "(" + ph.name(attr.Name) + ")", nil

	case opCompare:
		attr, err := schema.lookup(c.attr)
		if err != nil {
			return "", err
		}

		key := ph.name(attr.Name)
		val, err := ph.value(attr, c.args[0])
		if err != nil {
			return "", err
		}
		return key + " " + c.fun + " " + val, nil

	case opBeginsWith:
		attr, err := schema.lookup(c.attr)
		if err != nil {
			return "", err
		}

		key := ph.name(attr.Name)
		val, err := ph.value(attr, c.args[0])
		if err != nil {
			return "", err
		}
		return c.fun + "(" + key + ", " + val + ")", nil

	case opBetween:
		attr, err := schema.lookup(c.attr)
		if err != nil {
			return "", err
		}

		key := ph.name(attr.Name)
		lo, err := ph.value(attr, c.args[0])
		if err != nil {
			return "", err
		}
		hi, err := ph.value(attr, c.args[1])
		if err != nil {
			return "", err
		}
		return key + " BETWEEN " + lo + " AND " + hi, nil

	case opAnd, opOr:
		lhs, err := c.lhs.compile(schema, ph)
		if err != nil {
			return "", err
		}
		rhs, err := c.rhs.compile(schema, ph)
		if err != nil {
			return "", err
		}

		op := " AND "
		if c.op == opOr {
			op = " OR "
		}
		return "(" + lhs + ")" + op + "(" + rhs + ")", nil

	case opNot:
		expr, err := c.lhs.compile(schema, ph)
		if err != nil {
			return "", err
		}
		return "NOT (" + expr + ")", nil

	default:
		return "", errInvalidCondition.New(fmt.Errorf("empty condition"))
	}
}

// compile merges already compiled expression
func (e Expression) compile(_ *Schema, ph *placeholders) (string, error) {
	if e.Condition == "" {
		return "", errInvalidCondition.New(fmt.Errorf("empty expression"))
	}

	for k, v := range e.Names {
		if err := ph.bindName(k, v); err != nil {
			return "", err
		}
	}

	for k, v := range e.Values {
		if err := ph.bindValue(k, v); err != nil {
			return "", err
		}
	}

	return e.Condition, nil
}

// placeholders is allocation state of a single compile pass
type placeholders struct {
	reservedNames  map[string]string
	reservedValues map[string]types.AttributeValue
	names          map[string]string
	values         map[string]types.AttributeValue
	seqName        int
	seqValue       int
}

func newPlaceholders(
	names map[string]string,
	values map[string]types.AttributeValue,
) *placeholders {
	return &placeholders{
		reservedNames:  names,
		reservedValues: values,
		names:          map[string]string{},
		values:         map[string]types.AttributeValue{},
	}
}

func (ph *placeholders) hasName(token string) bool {
	_, a := ph.reservedNames[token]
	_, b := ph.names[token]
	return a || b
}

func (ph *placeholders) hasValue(token string) bool {
	_, a := ph.reservedValues[token]
	_, b := ph.values[token]
	return a || b
}

// name allocates placeholder #attr, the pass counter is appended if the token
// is already allocated: #attr1, #attr2, ...
func (ph *placeholders) name(attr string) string {
	base := "#" + sanitize(attr)

	k := ph.seqName
	ph.seqName++

	token := base
	for ph.hasName(token) {
		token = base + strconv.Itoa(k)
		k = ph.seqName
		ph.seqName++
	}

	ph.names[token] = attr
	return token
}

// value allocates placeholder :valueN for literal encoded as attribute's kind
func (ph *placeholders) value(attr Attribute, val any) (string, error) {
	av, err := encodeAttribute(attr, val)
	if err != nil {
		return "", err
	}

	var token string
	for {
		token = ":value" + strconv.Itoa(ph.seqValue)
		ph.seqValue++
		if !ph.hasValue(token) {
			break
		}
	}

	ph.values[token] = av
	return token, nil
}

func (ph *placeholders) bindName(token, attr string) error {
	if v, has := ph.reservedNames[token]; has && v != attr {
		return errPlaceholderCollide.New(fmt.Errorf("%s", token))
	}
	if v, has := ph.names[token]; has && v != attr {
		return errPlaceholderCollide.New(fmt.Errorf("%s", token))
	}

	ph.names[token] = attr
	return nil
}

func (ph *placeholders) bindValue(token string, av types.AttributeValue) error {
	if v, has := ph.reservedValues[token]; has && !reflect.DeepEqual(v, av) {
		return errPlaceholderCollide.New(fmt.Errorf("%s", token))
	}
	if v, has := ph.values[token]; has && !reflect.DeepEqual(v, av) {
		return errPlaceholderCollide.New(fmt.Errorf("%s", token))
	}

	ph.values[token] = av
	return nil
}

// sanitize keeps [A-Za-z0-9_] runes of attribute name, others become _
func sanitize(attr string) string {
	return strings.Map(
		func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
				return r
			default:
				return '_'
			}
		},
		attr,
	)
}
