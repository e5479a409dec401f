//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fogfish/dynarec"
)

// PutBuilder is a single put request, optionally guarded by condition.
type PutBuilder struct {
	client *Client
	record dynarec.Record
	cond   dynarec.Conditional
}

// Put starts put request of the record. The record must be built
// for the schema of the client.
//
//	db.Put(rec).Condition(cond).Run(ctx)
func (c *Client) Put(rec dynarec.Record) *PutBuilder {
	return &PutBuilder{client: c, record: rec}
}

// Condition guards the write. The write happens only if condition
// holds for the item currently stored under the same key.
func (b *PutBuilder) Condition(cond dynarec.Conditional) *PutBuilder {
	b.cond = cond
	return b
}

// Input returns request exactly as it is sent to DynamoDB
func (b *PutBuilder) Input() (*dynamodb.PutItemInput, error) {
	if b.record.Schema() == nil {
		return nil, errInvalidRecord.New(fmt.Errorf("record is not built"))
	}

	if b.record.Schema() != b.client.schema {
		return nil, errForeignRecord.New(
			fmt.Errorf("record of %s is written to %s", b.record.Schema().Table(), b.client.table),
		)
	}

	item, err := b.record.Encode()
	if err != nil {
		return nil, err
	}

	req := &dynamodb.PutItemInput{
		Item:      item,
		TableName: aws.String(b.client.table),
	}

	if b.cond == nil {
		return req, nil
	}

	expr, err := dynarec.Compile(b.cond, b.client.schema)
	if err != nil {
		return nil, err
	}

	req.ConditionExpression = aws.String(expr.Condition)
	req.ExpressionAttributeNames = expr.Names
	req.ExpressionAttributeValues = expr.Values

	return req, nil
}

// Run sends the request. It returns *dynarec.ConditionalCheckFailed if
// storage has rejected the write, *dynarec.TransportError on any other
// failure of the storage. Input errors are returned before any I/O.
func (b *PutBuilder) Run(ctx context.Context) error {
	req, err := b.Input()
	if err != nil {
		return err
	}

	b.client.logger.Debug("put item",
		"table", b.client.table,
		"condition", aws.ToString(req.ConditionExpression),
	)

	_, err = b.client.service.PutItem(ctx, req)
	if err != nil {
		return b.client.classify("put", req.ConditionExpression, err)
	}

	b.client.logger.Debug("put item done", "table", b.client.table)
	return nil
}
