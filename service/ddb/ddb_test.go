//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package ddb_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/fogfish/dynarec"
	"github.com/fogfish/dynarec/internal/ddbtest"
	"github.com/fogfish/dynarec/service/ddb"
	"github.com/fogfish/it"
)

var userSchema = dynarec.MustSchema(
	dynarec.NewSchema("user",
		dynarec.Attribute{Name: "id", Kind: dynarec.KindString, PartitionKey: true},
		dynarec.Attribute{Name: "name", Kind: dynarec.KindString},
	),
)

var userWithUUIDSchema = dynarec.MustSchema(
	dynarec.NewSchema("user",
		dynarec.Attribute{Name: "id", Kind: dynarec.KindString, PartitionKey: true, Generated: true},
		dynarec.Attribute{Name: "name", Kind: dynarec.KindString},
	),
)

func user(id, name string) dynarec.Record {
	rec, err := dynarec.NewBuilder(userSchema).Set("id", id).Set("name", name).Build()
	if err != nil {
		panic(err)
	}
	return rec
}

func item(id, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberS{Value: id},
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

func TestNew(t *testing.T) {
	db, err := ddb.New(userSchema, ddb.WithService(&ddbtest.Counter{}))
	it.Ok(t).
		IfNil(err).
		If(db.Table()).Should().Equal("user").
		If(db.Schema()).Should().Equal(userSchema)

	db, err = ddb.New(userSchema,
		ddb.WithService(&ddbtest.Counter{}),
		ddb.WithTable("account"),
		ddb.WithTablePrefix("dev-"),
		ddb.WithTableSuffix("-v1"),
	)
	it.Ok(t).
		IfNil(err).
		If(db.Table()).Should().Equal("dev-account-v1")

	_, err = ddb.New(userSchema)
	it.Ok(t).
		IfNotNil(err).
		IfTrue(strings.Contains(err.Error(), "service is not defined"))

	_, err = ddb.New(userSchema, ddb.WithLogger(slog.Default()))
	it.Ok(t).IfNotNil(err)

	_, err = ddb.New(nil, ddb.WithService(&ddbtest.Counter{}))
	it.Ok(t).IfNotNil(err)
}

func TestNewWithConfig(t *testing.T) {
	db, err := ddb.New(userSchema, ddb.WithConfig(aws.Config{Region: "eu-west-1"}))
	it.Ok(t).
		IfNil(err).
		If(db.Table()).Should().Equal("user")

	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "access")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	db, err = ddb.New(userSchema, ddb.WithDefaultDDB(), ddb.WithTablePrefix("dev-"))
	it.Ok(t).
		IfNil(err).
		If(db.Table()).Should().Equal("dev-user")
}

func TestPutInput(t *testing.T) {
	db := ddb.Must(ddb.New(userSchema, ddb.WithService(&ddbtest.Counter{})))
	cond := dynarec.ConditionFor(userSchema).AttrNotExists("name")

	req, err := db.Put(user("id0", "bokuweb")).Condition(cond).Input()
	it.Ok(t).
		IfNil(err).
		If(aws.ToString(req.TableName)).Should().Equal("user").
		If(req.Item).Should().Equal(item("id0", "bokuweb")).
		If(aws.ToString(req.ConditionExpression)).Should().Equal("attribute_not_exists(#name)").
		If(req.ExpressionAttributeNames).Should().Equal(map[string]string{"#name": "name"}).
		IfTrue(req.ExpressionAttributeValues == nil)
}

func TestPutInputUnconditional(t *testing.T) {
	db := ddb.Must(ddb.New(userSchema, ddb.WithService(&ddbtest.Counter{})))

	req, err := db.Put(user("id0", "bokuweb")).Input()
	it.Ok(t).
		IfNil(err).
		IfTrue(req.ConditionExpression == nil).
		IfTrue(req.ExpressionAttributeNames == nil).
		IfTrue(req.ExpressionAttributeValues == nil)
}

func TestPut(t *testing.T) {
	cond := dynarec.ConditionFor(userSchema).Value("bokuweb").EqAttr("name")
	db := ddbtest.PutItem(userSchema,
		&dynamodb.PutItemInput{
			TableName:           aws.String("user"),
			Item:                item("id0", "bokuweb"),
			ConditionExpression: aws.String("#name = :value0"),
			ExpressionAttributeNames: map[string]string{
				"#name": "name",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":value0": &types.AttributeValueMemberS{Value: "bokuweb"},
			},
		},
	)

	err := db.Put(user("id0", "bokuweb")).Condition(cond).Run(context.Background())
	it.Ok(t).IfNil(err)
}

func TestPutConditionalCheckFailed(t *testing.T) {
	db := ddbtest.Constrains(userSchema)
	cond := dynarec.ConditionFor(userSchema).AttrNotExists("id")

	err := db.Put(user("id0", "bokuweb")).Condition(cond).Run(context.Background())

	var e *dynarec.ConditionalCheckFailed
	it.Ok(t).
		IfTrue(errors.As(err, &e)).
		If(e.Message).Should().Equal("The conditional request failed").
		If(e.Table).Should().Equal("user").
		IfTrue(e.PreConditionFailed())
}

func TestPutConditionalCheckFailedByCode(t *testing.T) {
	db := ddbtest.Failure(userSchema,
		&smithy.GenericAPIError{Code: "ConditionalCheckFailedException", Message: "rejected"},
	)

	err := db.Put(user("id0", "bokuweb")).Run(context.Background())

	var e *dynarec.ConditionalCheckFailed
	it.Ok(t).
		IfTrue(errors.As(err, &e)).
		If(e.Message).Should().Equal("rejected")
}

func TestPutTransportError(t *testing.T) {
	for _, failure := range []error{
		errors.New("connection reset"),
		&smithy.GenericAPIError{Code: "ValidationException", Message: "invalid"},
		&types.ResourceNotFoundException{Message: aws.String("not found")},
	} {
		db := ddbtest.Failure(userSchema, failure)
		err := db.Put(user("id0", "bokuweb")).Run(context.Background())

		var e *dynarec.TransportError
		var c *dynarec.ConditionalCheckFailed
		it.Ok(t).
			IfTrue(errors.As(err, &e)).
			IfFalse(errors.As(err, &c)).
			IfTrue(errors.Is(err, failure))
	}
}

func TestPutInputErrorNoIO(t *testing.T) {
	counter := &ddbtest.Counter{}
	db := ddb.Must(ddb.New(userSchema, ddb.WithService(counter)))

	// record is not built
	err := db.Put(dynarec.Record{}).Run(context.Background())
	it.Ok(t).IfNotNil(err)

	// record of other schema
	other, _ := dynarec.NewBuilder(userWithUUIDSchema).Set("name", "bokuweb").Build()
	err = db.Put(other).Run(context.Background())
	it.Ok(t).IfNotNil(err)

	// condition refers unknown attribute
	var unknown *dynarec.UnknownAttribute
	cond := dynarec.ConditionFor(userSchema).AttrExists("email")
	err = db.Put(user("id0", "bokuweb")).Condition(cond).Run(context.Background())
	it.Ok(t).IfTrue(errors.As(err, &unknown))

	// literal does not match the kind of attribute
	var mismatch *dynarec.TypeMismatch
	cond = dynarec.ConditionFor(userSchema).Attr("name").Eq(10)
	err = db.Put(user("id0", "bokuweb")).Condition(cond).Run(context.Background())
	it.Ok(t).
		IfTrue(errors.As(err, &mismatch)).
		If(counter.Put).Should().Equal(0)
}

func TestPutLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	db := ddb.Must(ddb.New(userSchema,
		ddb.WithService(ddbtest.Fails(
			&types.ConditionalCheckFailedException{Message: aws.String(ddbtest.ConditionalRequestFailed)},
		)),
		ddb.WithLogger(logger),
	))

	_ = db.Put(user("id0", "bokuweb")).
		Condition(dynarec.ConditionFor(userSchema).AttrNotExists("id")).
		Run(context.Background())

	out := buf.String()
	it.Ok(t).
		IfTrue(strings.Contains(out, "put item")).
		IfTrue(strings.Contains(out, "conditional check failed")).
		IfTrue(strings.Contains(out, "attribute_not_exists(#id)"))
}

func TestDelete(t *testing.T) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "id0"},
	}
	db := ddbtest.DeleteItem(userSchema, &key)

	err := db.Delete("id0").Run(context.Background())
	it.Ok(t).IfNil(err)
}

func TestDeleteInput(t *testing.T) {
	db := ddb.Must(ddb.New(userSchema, ddb.WithService(&ddbtest.Counter{})))
	cond := dynarec.ConditionFor(userSchema).AttrExists("id")

	req, err := db.Delete("id0").Condition(cond).Input()
	it.Ok(t).
		IfNil(err).
		If(aws.ToString(req.TableName)).Should().Equal("user").
		If(req.Key).Should().Equal(map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "id0"},
	}).
		If(aws.ToString(req.ConditionExpression)).Should().Equal("attribute_exists(#id)")

	var invalid *dynarec.InvalidKey
	_, err = db.Delete("").Input()
	it.Ok(t).IfTrue(errors.As(err, &invalid))
}

func TestDeleteConditionalCheckFailed(t *testing.T) {
	db := ddbtest.Constrains(userSchema)

	err := db.Delete("id0").
		Condition(dynarec.ConditionFor(userSchema).AttrExists("id")).
		Run(context.Background())

	var e *dynarec.ConditionalCheckFailed
	it.Ok(t).IfTrue(errors.As(err, &e))
}
