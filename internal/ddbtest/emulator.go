//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements in-memory emulator of DynamoDB conditional writes
//

package ddbtest

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Message reported by emulator when condition does not hold
const ConditionalRequestFailed = "The conditional request failed"

type keySchema struct {
	hashKey string
	sortKey string
}

// Emulator of DynamoDB tables backed by in-memory LevelDB.
// Conditional check and write are atomic.
type Emulator struct {
	sync.Mutex
	db     *leveldb.DB
	tables map[string]keySchema
}

// NewEmulator creates empty emulator
func NewEmulator() (*Emulator, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return &Emulator{db: db, tables: map[string]keySchema{}}, nil
}

// Close emulator
func (e *Emulator) Close() error { return e.db.Close() }

// CreateTable declares table with primary key
func (e *Emulator) CreateTable(table, hashKey string, sortKey ...string) {
	e.Lock()
	defer e.Unlock()

	ks := keySchema{hashKey: hashKey}
	if len(sortKey) > 0 {
		ks.sortKey = sortKey[0]
	}
	e.tables[table] = ks
}

// Lookup item by primary key, nil if item does not exist
func (e *Emulator) Lookup(table string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	e.Lock()
	defer e.Unlock()

	dbkey, err := e.storageKey(table, key)
	if err != nil {
		return nil, err
	}

	return e.get(dbkey)
}

func (e *Emulator) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Lock()
	defer e.Unlock()

	table := aws.ToString(input.TableName)
	dbkey, err := e.storageKey(table, input.Item)
	if err != nil {
		return nil, err
	}

	if err := e.check(dbkey, input.ConditionExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	val, err := marshalItem(input.Item)
	if err != nil {
		return nil, errValidation(err.Error())
	}

	if err := e.db.Put(dbkey, val, nil); err != nil {
		return nil, err
	}

	return &dynamodb.PutItemOutput{}, nil
}

func (e *Emulator) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.Lock()
	defer e.Unlock()

	table := aws.ToString(input.TableName)
	if ks, has := e.tables[table]; has {
		expected := 1
		if ks.sortKey != "" {
			expected = 2
		}
		if len(input.Key) != expected {
			return nil, errValidation("the provided key element does not match the schema")
		}
	}

	dbkey, err := e.storageKey(table, input.Key)
	if err != nil {
		return nil, err
	}

	if err := e.check(dbkey, input.ConditionExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	if err := e.db.Delete(dbkey, nil); err != nil {
		return nil, err
	}

	return &dynamodb.DeleteItemOutput{}, nil
}

func (e *Emulator) check(
	dbkey []byte,
	expr *string,
	names map[string]string,
	values map[string]types.AttributeValue,
) error {
	if expr == nil {
		if len(names) != 0 || len(values) != 0 {
			return errValidation("expression attributes are given without expression")
		}
		return nil
	}

	item, err := e.get(dbkey)
	if err != nil {
		return err
	}

	ok, err := Evaluate(*expr, names, values, item)
	if err != nil {
		return errValidation(err.Error())
	}

	if !ok {
		return &types.ConditionalCheckFailedException{
			Message: aws.String(ConditionalRequestFailed),
		}
	}

	return nil
}

func (e *Emulator) get(dbkey []byte) (map[string]types.AttributeValue, error) {
	val, err := e.db.Get(dbkey, nil)
	switch {
	case err == leveldb.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, err
	}

	return unmarshalItem(val)
}

func (e *Emulator) storageKey(table string, item map[string]types.AttributeValue) ([]byte, error) {
	ks, has := e.tables[table]
	if !has {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("table %s not found", table)),
		}
	}

	hkey, err := keyOf(ks.hashKey, item)
	if err != nil {
		return nil, err
	}

	dbkey := table + "\x00" + hkey
	if ks.sortKey != "" {
		skey, err := keyOf(ks.sortKey, item)
		if err != nil {
			return nil, err
		}
		dbkey = dbkey + "\x00" + skey
	}

	return []byte(dbkey), nil
}

func keyOf(attr string, item map[string]types.AttributeValue) (string, error) {
	av, has := item[attr]
	if !has {
		return "", errValidation(fmt.Sprintf("missing the key %s in the item", attr))
	}

	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		if v.Value == "" {
			return "", errValidation(fmt.Sprintf("key %s is empty string", attr))
		}
		return "S" + v.Value, nil
	case *types.AttributeValueMemberN:
		n, ok := new(big.Rat).SetString(v.Value)
		if !ok {
			return "", errValidation(fmt.Sprintf("key %s is not a number", attr))
		}
		return "N" + n.RatString(), nil
	case *types.AttributeValueMemberB:
		if len(v.Value) == 0 {
			return "", errValidation(fmt.Sprintf("key %s is empty binary", attr))
		}
		return "B" + hex.EncodeToString(v.Value), nil
	default:
		return "", errValidation(fmt.Sprintf("key %s has invalid type %T", attr, av))
	}
}

func errValidation(msg string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: msg,
		Fault:   smithy.FaultClient,
	}
}
