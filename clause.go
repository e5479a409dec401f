//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec

import (
	"fmt"

	"github.com/fogfish/golem/hseq"
)

// Clause is typed builder of conditions over the field of struct T.
//
// Golang struct refers the field by `Name` but DynamoDB stores it under the
// attribute defined by `dynamodbav` tag. The clause resolves the attribute
// once, at declaration, so that application code uses struct fields only.
//
//	var ifName = dynarec.ClauseFor[User, string]("Name")
//
//	ifName.Eq("bokuweb")
//	ifName.NotExists()
type Clause[T any, A any] struct{ attr string }

// ClauseFor declares clause for the struct field. It panics if the field
// is not defined by the struct.
func ClauseFor[T any, A any](field string) Clause[T, A] {
	for _, t := range hseq.New[T]() {
		if t.Name != field {
			continue
		}

		tag, ok := tagOf(t.StructField)
		if !ok {
			panic(fmt.Errorf("field %s of %T is not serializable", field, *new(T)))
		}
		return Clause[T, A]{attr: tag.name}
	}

	panic(fmt.Errorf("field %s is not defined by %T", field, *new(T)))
}

// Attribute name
func (c Clause[T, A]) Attribute() string { return c.attr }

// Eq ⟼ #attr = :value
func (c Clause[T, A]) Eq(val A) Condition { return compare("=", c.attr, val) }

// Ne ⟼ #attr <> :value
func (c Clause[T, A]) Ne(val A) Condition { return compare("<>", c.attr, val) }

// Lt ⟼ #attr < :value
func (c Clause[T, A]) Lt(val A) Condition { return compare("<", c.attr, val) }

// Le ⟼ #attr <= :value
func (c Clause[T, A]) Le(val A) Condition { return compare("<=", c.attr, val) }

// Gt ⟼ #attr > :value
func (c Clause[T, A]) Gt(val A) Condition { return compare(">", c.attr, val) }

// Ge ⟼ #attr >= :value
func (c Clause[T, A]) Ge(val A) Condition { return compare(">=", c.attr, val) }

// Between ⟼ #attr BETWEEN :lo AND :hi
func (c Clause[T, A]) Between(lo, hi A) Condition {
	return Condition{op: opBetween, attr: c.attr, args: []any{lo, hi}}
}

// HasPrefix ⟼ begins_with(#attr, :value)
func (c Clause[T, A]) HasPrefix(prefix string) Condition {
	return Condition{op: opBeginsWith, fun: "begins_with", attr: c.attr, args: []any{prefix}}
}

// Exists ⟼ attribute_exists(#attr)
func (c Clause[T, A]) Exists() Condition { return Condition{op: opExists, attr: c.attr} }

// NotExists ⟼ attribute_not_exists(#attr)
func (c Clause[T, A]) NotExists() Condition { return Condition{op: opNotExists, attr: c.attr} }
