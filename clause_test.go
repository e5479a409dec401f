//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/dynarec"
	"github.com/fogfish/it"
)

var (
	ifUserID   = dynarec.ClauseFor[tUser, string]("ID")
	ifUserName = dynarec.ClauseFor[tUser, string]("Name")
	ifUserAge  = dynarec.ClauseFor[tUser, int]("Age")
)

func TestClauseAttribute(t *testing.T) {
	it.Ok(t).
		If(ifUserID.Attribute()).Should().Equal("id").
		If(ifUserName.Attribute()).Should().Equal("name").
		If(ifUserAge.Attribute()).Should().Equal("age")
}

func TestClauseCompile(t *testing.T) {
	spec := []struct {
		cond   dynarec.Condition
		expect string
	}{
		{ifUserName.Eq("bokuweb"), "#name = :value0"},
		{ifUserName.Ne("bokuweb"), "#name <> :value0"},
		{ifUserName.HasPrefix("boku"), "begins_with(#name, :value0)"},
		{ifUserID.Exists(), "attribute_exists(#id)"},
		{ifUserID.NotExists(), "attribute_not_exists(#id)"},
		{ifUserAge.Lt(1), "#age < :value0"},
		{ifUserAge.Le(1), "#age <= :value0"},
		{ifUserAge.Gt(1), "#age > :value0"},
		{ifUserAge.Ge(1), "#age >= :value0"},
		{ifUserAge.Between(1, 2), "#age BETWEEN :value0 AND :value1"},
	}

	for _, tt := range spec {
		expr, err := dynarec.Compile(tt.cond, tUserSchema)
		it.Ok(t).
			IfNil(err).
			If(expr.Condition).Should().Equal(tt.expect)
	}
}

func TestClauseValue(t *testing.T) {
	expr, err := dynarec.Compile(ifUserAge.Eq(36).And(ifUserID.Exists()), tUserSchema)
	it.Ok(t).
		IfNil(err).
		If(expr.Condition).Should().Equal("(#age = :value0) AND (attribute_exists(#id))").
		If(expr.Values).Should().Equal(map[string]types.AttributeValue{
		":value0": &types.AttributeValueMemberN{Value: "36"},
	})
}

func TestClauseUndefinedField(t *testing.T) {
	defer func() {
		it.Ok(t).IfNotNil(recover())
	}()

	dynarec.ClauseFor[tUser, string]("Email")
}
