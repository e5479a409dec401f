//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file declares condition expressions over record attributes
//

package dynarec

// opcode of condition node
type opcode int

const (
	opNone opcode = iota
	opExists
	opNotExists
	opCompare
	opBeginsWith
	opBetween
	opAnd
	opOr
	opNot
)

// Condition is a node of boolean expression tree over record attributes.
// The value is immutable, combinators return new nodes.
//
//	cond := dynarec.ConditionFor(User).AttrNotExists("id")
//	cond := dynarec.ConditionFor(User).Value("bokuweb").EqAttr("name")
type Condition struct {
	op   opcode
	fun  string
	attr string
	args []any
	lhs  *Condition
	rhs  *Condition
}

// Conditional is either Condition tree or already compiled Expression
type Conditional interface {
	compile(*Schema, *placeholders) (string, error)
}

// IsZero returns true if condition is not defined
func (c Condition) IsZero() bool { return c.op == opNone }

// And combines conditions: (c) AND (other)
func (c Condition) And(other Condition) Condition {
	return Condition{op: opAnd, lhs: &c, rhs: &other}
}

// Or combines conditions: (c) OR (other)
func (c Condition) Or(other Condition) Condition {
	return Condition{op: opOr, lhs: &c, rhs: &other}
}

// Not negates condition: NOT (c)
func Not(c Condition) Condition {
	return Condition{op: opNot, lhs: &c}
}

// Conditions is builder of conditions scoped to the schema
type Conditions struct{ schema *Schema }

// ConditionFor creates condition builder for the schema
func ConditionFor(schema *Schema) Conditions {
	return Conditions{schema: schema}
}

// Schema of conditions
func (cs Conditions) Schema() *Schema { return cs.schema }

// Compile condition against the schema of the builder
func (cs Conditions) Compile(c Conditional) (Expression, error) {
	return Compile(c, cs.schema)
}

// AttrExists ⟼ attribute_exists(#attr)
func (Conditions) AttrExists(attr string) Condition {
	return Condition{op: opExists, attr: attr}
}

// AttrNotExists ⟼ attribute_not_exists(#attr)
func (Conditions) AttrNotExists(attr string) Condition {
	return Condition{op: opNotExists, attr: attr}
}

// Value starts condition with literal on the left side
//
//	cond.Value("bokuweb").EqAttr("name") ⟼ #name = :value0
func (Conditions) Value(val any) Operand {
	return Operand{val: val}
}

// Attr starts condition with attribute on the left side
//
//	cond.Attr("name").Eq("bokuweb") ⟼ #name = :value0
func (Conditions) Attr(attr string) Path {
	return Path{attr: attr}
}

// Operand is a literal value of condition
type Operand struct{ val any }

// EqAttr ⟼ #attr = :value
func (v Operand) EqAttr(attr string) Condition { return compare("=", attr, v.val) }

// NeAttr ⟼ #attr <> :value
func (v Operand) NeAttr(attr string) Condition { return compare("<>", attr, v.val) }

// LtAttr is value < attr ⟼ #attr > :value
func (v Operand) LtAttr(attr string) Condition { return compare(">", attr, v.val) }

// LeAttr is value <= attr ⟼ #attr >= :value
func (v Operand) LeAttr(attr string) Condition { return compare(">=", attr, v.val) }

// GtAttr is value > attr ⟼ #attr < :value
func (v Operand) GtAttr(attr string) Condition { return compare("<", attr, v.val) }

// GeAttr is value >= attr ⟼ #attr <= :value
func (v Operand) GeAttr(attr string) Condition { return compare("<=", attr, v.val) }

// Path is an attribute of condition
type Path struct{ attr string }

// Eq ⟼ #attr = :value
func (p Path) Eq(val any) Condition { return compare("=", p.attr, val) }

// Ne ⟼ #attr <> :value
func (p Path) Ne(val any) Condition { return compare("<>", p.attr, val) }

// Lt ⟼ #attr < :value
func (p Path) Lt(val any) Condition { return compare("<", p.attr, val) }

// Le ⟼ #attr <= :value
func (p Path) Le(val any) Condition { return compare("<=", p.attr, val) }

// Gt ⟼ #attr > :value
func (p Path) Gt(val any) Condition { return compare(">", p.attr, val) }

// Ge ⟼ #attr >= :value
func (p Path) Ge(val any) Condition { return compare(">=", p.attr, val) }

// Between ⟼ #attr BETWEEN :value0 AND :value1
func (p Path) Between(lo, hi any) Condition {
	return Condition{op: opBetween, attr: p.attr, args: []any{lo, hi}}
}

// BeginsWith ⟼ begins_with(#attr, :value)
func (p Path) BeginsWith(prefix string) Condition {
	return Condition{op: opBeginsWith, fun: "begins_with", attr: p.attr, args: []any{prefix}}
}

// Exists ⟼ attribute_exists(#attr)
func (p Path) Exists() Condition { return Condition{op: opExists, attr: p.attr} }

// NotExists ⟼ attribute_not_exists(#attr)
func (p Path) NotExists() Condition { return Condition{op: opNotExists, attr: p.attr} }

func compare(fun, attr string, val any) Condition {
	return Condition{op: opCompare, fun: fun, attr: attr, args: []any{val}}
}
