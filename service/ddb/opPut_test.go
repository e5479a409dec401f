//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package ddb_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fogfish/dynarec"
	"github.com/fogfish/dynarec/internal/ddbtest"
	"github.com/fogfish/dynarec/service/ddb"
	"github.com/fogfish/it"
)

func emulator(t *testing.T, schema *dynarec.Schema) (*ddbtest.Emulator, *ddb.Client) {
	t.Helper()

	e, err := ddbtest.NewEmulator()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })

	e.CreateTable(schema.Table(), schema.PartitionKey().Name)
	return e, ddb.Must(ddb.New(schema, ddb.WithService(e)))
}

func TestEmulatorPutWithCondition(t *testing.T) {
	ctx := context.Background()
	_, db := emulator(t, userSchema)
	cs := dynarec.ConditionFor(userSchema)

	it.Ok(t).IfNil(db.Put(user("id0", "bokuweb")).Run(ctx))

	// value matches the stored attribute
	err := db.Put(user("id0", "bokuweb")).
		Condition(cs.Value("bokuweb").EqAttr("name")).
		Run(ctx)
	it.Ok(t).IfNil(err)

	// value does not match the stored attribute
	err = db.Put(user("id0", "bokuweb")).
		Condition(cs.Value("bokuweb_").EqAttr("name")).
		Run(ctx)

	var e *dynarec.ConditionalCheckFailed
	it.Ok(t).
		IfTrue(errors.As(err, &e)).
		If(e.Message).Should().Equal("The conditional request failed")
}

func TestEmulatorPutAttrNotExists(t *testing.T) {
	ctx := context.Background()
	_, db := emulator(t, userSchema)
	cond := dynarec.ConditionFor(userSchema).AttrNotExists("id")

	// the item is fresh
	err := db.Put(user("id0", "bokuweb")).Condition(cond).Run(ctx)
	it.Ok(t).IfNil(err)

	// the item exists
	err = db.Put(user("id0", "other")).Condition(cond).Run(ctx)

	var e *dynarec.ConditionalCheckFailed
	it.Ok(t).IfTrue(errors.As(err, &e))
}

func TestEmulatorPutAttrExists(t *testing.T) {
	ctx := context.Background()
	e, db := emulator(t, userSchema)
	cond := dynarec.ConditionFor(userSchema).AttrExists("id")

	// the item is absent
	err := db.Put(user("id0", "bokuweb")).Condition(cond).Run(ctx)
	var ccf *dynarec.ConditionalCheckFailed
	it.Ok(t).IfTrue(errors.As(err, &ccf))

	it.Ok(t).IfNil(db.Put(user("id0", "bokuweb")).Run(ctx))

	err = db.Put(user("id0", "renamed")).Condition(cond).Run(ctx)
	it.Ok(t).IfNil(err)

	val, err := e.Lookup("user", map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "id0"},
	})
	it.Ok(t).
		IfNil(err).
		If(val).Should().Equal(item("id0", "renamed"))
}

func TestEmulatorPutGeneratedID(t *testing.T) {
	ctx := context.Background()
	e, db := emulator(t, userWithUUIDSchema)

	rec, err := dynarec.NewBuilder(userWithUUIDSchema).Set("name", "bokuweb").Build()
	it.Ok(t).IfNil(err)

	err = db.Put(rec).
		Condition(dynarec.ConditionFor(userWithUUIDSchema).AttrNotExists("id")).
		Run(ctx)
	it.Ok(t).IfNil(err)

	id, _ := rec.Get("id")
	val, err := e.Lookup("user", map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id.(string)},
	})
	it.Ok(t).
		IfNil(err).
		If(val["name"]).Should().Equal(&types.AttributeValueMemberS{Value: "bokuweb"})
}

func TestEmulatorPutConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	_, db := emulator(t, userSchema)
	cond := dynarec.ConditionFor(userSchema).AttrNotExists("id")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ok     int
		failed int
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Put(user("id0", "bokuweb")).Condition(cond).Run(ctx)

			mu.Lock()
			defer mu.Unlock()

			var e *dynarec.ConditionalCheckFailed
			switch {
			case err == nil:
				ok++
			case errors.As(err, &e):
				failed++
			}
		}()
	}
	wg.Wait()

	it.Ok(t).
		If(ok).Should().Equal(1).
		If(failed).Should().Equal(15)
}

func TestEmulatorDelete(t *testing.T) {
	ctx := context.Background()
	e, db := emulator(t, userSchema)
	cs := dynarec.ConditionFor(userSchema)

	it.Ok(t).IfNil(db.Put(user("id0", "bokuweb")).Run(ctx))

	err := db.Delete("id0").Condition(cs.Attr("name").Eq("other")).Run(ctx)
	var ccf *dynarec.ConditionalCheckFailed
	it.Ok(t).IfTrue(errors.As(err, &ccf))

	err = db.Delete("id0").Condition(cs.Attr("name").Eq("bokuweb")).Run(ctx)
	it.Ok(t).IfNil(err)

	val, err := e.Lookup("user", map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "id0"},
	})
	it.Ok(t).
		IfNil(err).
		IfTrue(val == nil)

	// absent item
	it.Ok(t).IfNil(db.Delete("id0").Run(ctx))
}

func TestEmulatorUnknownTable(t *testing.T) {
	e, err := ddbtest.NewEmulator()
	it.Ok(t).IfNil(err)
	defer e.Close()

	db := ddb.Must(ddb.New(userSchema, ddb.WithService(e), ddb.WithTablePrefix("dev-")))
	err = db.Put(user("id0", "bokuweb")).Run(context.Background())

	var te *dynarec.TransportError
	it.Ok(t).IfTrue(errors.As(err, &te))
}
