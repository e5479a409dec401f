//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file mocks AWS DynamoDB
//

package ddbtest

import (
	"context"
	"errors"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fogfish/dynarec"
	ddbapi "github.com/fogfish/dynarec/service/ddb"
)

/*
mock factory
*/
func mock(schema *dynarec.Schema, mock ddbapi.DynamoDB) *ddbapi.Client {
	return ddbapi.Must(
		ddbapi.New(schema, ddbapi.WithService(mock)),
	)
}

/*
PutItem mock, expects the item and the condition
*/
func PutItem(
	schema *dynarec.Schema,
	expect *dynamodb.PutItemInput,
) *ddbapi.Client {
	return mock(schema, &ddbPutItem{expect: expect})
}

type ddbPutItem struct {
	ddbapi.DynamoDB
	expect *dynamodb.PutItemInput
}

func (mock *ddbPutItem) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if aws.ToString(mock.expect.TableName) != aws.ToString(input.TableName) {
		return nil, errors.New("unexpected table")
	}

	if !reflect.DeepEqual(mock.expect.Item, input.Item) {
		return nil, errors.New("unexpected entity")
	}

	if aws.ToString(mock.expect.ConditionExpression) != aws.ToString(input.ConditionExpression) {
		return nil, errors.New("unexpected condition")
	}

	if !reflect.DeepEqual(mock.expect.ExpressionAttributeNames, input.ExpressionAttributeNames) ||
		!reflect.DeepEqual(mock.expect.ExpressionAttributeValues, input.ExpressionAttributeValues) {
		return nil, errors.New("unexpected condition attributes")
	}

	return &dynamodb.PutItemOutput{}, nil
}

/*
DeleteItem mock, expects the key
*/
func DeleteItem(
	schema *dynarec.Schema,
	expectKey *map[string]types.AttributeValue,
) *ddbapi.Client {
	return mock(schema, &ddbDeleteItem{expectKey: expectKey})
}

type ddbDeleteItem struct {
	ddbapi.DynamoDB
	expectKey *map[string]types.AttributeValue
}

func (mock *ddbDeleteItem) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if !reflect.DeepEqual(*mock.expectKey, input.Key) {
		return nil, errors.New("unexpected entity")
	}

	return &dynamodb.DeleteItemOutput{}, nil
}

/*
Constrains mock, every write fails the conditional check
*/
func Constrains(schema *dynarec.Schema) *ddbapi.Client {
	return mock(schema, &ddbFailure{
		err: &types.ConditionalCheckFailedException{
			Message: aws.String(ConditionalRequestFailed),
		},
	})
}

/*
Failure mock, every write fails with the error
*/
func Failure(schema *dynarec.Schema, err error) *ddbapi.Client {
	return mock(schema, &ddbFailure{err: err})
}

/*
Fails returns DynamoDB service, which fails every write with the error
*/
func Fails(err error) ddbapi.DynamoDB {
	return &ddbFailure{err: err}
}

type ddbFailure struct {
	ddbapi.DynamoDB
	err error
}

func (mock *ddbFailure) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return nil, mock.err
}

func (mock *ddbFailure) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return nil, mock.err
}

/*
Counter mock, counts requests sent to the storage
*/
type Counter struct {
	ddbapi.DynamoDB
	Put    int
	Delete int
}

func (mock *Counter) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	mock.Put++
	return &dynamodb.PutItemOutput{}, nil
}

func (mock *Counter) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	mock.Delete++
	return &dynamodb.DeleteItemOutput{}, nil
}
