//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

/*
Package dynarec maps strongly typed records onto AWS DynamoDB items and
compiles typed conditions into DynamoDB condition expressions, so that
conditional writes are enforced atomically by the storage.

# Getting started

Declare the record type once. The schema is either derived from struct tags

	type User struct {
	  ID   string `dynamodbav:"id" dynarec:"partition_key,uuid"`
	  Name string `dynamodbav:"name"`
	}

	var UserSchema = dynarec.MustSchema(dynarec.Declare[User]("user"))

or declared explicitly

	var UserSchema = dynarec.MustSchema(
	  dynarec.NewSchema("user",
	    dynarec.Attribute{Name: "id", Kind: dynarec.KindString, PartitionKey: true, Generated: true},
	    dynarec.Attribute{Name: "name", Kind: dynarec.KindString},
	  ),
	)

Build the record. Generated identifiers are filled if omitted, missing
required attributes are reported before any I/O.

	rec, err := dynarec.NewBuilder(UserSchema).Set("name", "bokuweb").Build()

Define the condition

	cond := dynarec.ConditionFor(UserSchema).AttrNotExists("id")
	cond := dynarec.ConditionFor(UserSchema).Value("bokuweb").EqAttr("name")

Write the record with service/ddb client

	db := ddb.Must(ddb.New(UserSchema, ddb.WithDefaultDDB()))
	err := db.Put(rec).Condition(cond).Run(context.Background())

	var failed *dynarec.ConditionalCheckFailed
	if errors.As(err, &failed) {
	  // the storage has rejected the write
	}

# Errors

MissingRequiredField, InvalidKey, UnknownAttribute and TypeMismatch are
input errors, raised before any request is made. ConditionalCheckFailed is
the expected business outcome of conditional write. TransportError wraps any
other failure of the storage.
*/
package dynarec
