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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fogfish/dynarec"
)

// DeleteBuilder is a single delete request, optionally guarded by condition.
type DeleteBuilder struct {
	client  *Client
	hashKey any
	sortKey []any
	cond    dynarec.Conditional
}

// Delete starts delete request of the item identified by primary key.
// The sort key is required if the schema declares it.
//
//	db.Delete("id").Condition(cond).Run(ctx)
func (c *Client) Delete(hashKey any, sortKey ...any) *DeleteBuilder {
	return &DeleteBuilder{client: c, hashKey: hashKey, sortKey: sortKey}
}

// Condition guards the delete.
func (b *DeleteBuilder) Condition(cond dynarec.Conditional) *DeleteBuilder {
	b.cond = cond
	return b
}

// Input returns request exactly as it is sent to DynamoDB
func (b *DeleteBuilder) Input() (*dynamodb.DeleteItemInput, error) {
	key, err := dynarec.EncodeKey(b.client.schema, b.hashKey, b.sortKey...)
	if err != nil {
		return nil, err
	}

	req := &dynamodb.DeleteItemInput{
		Key:       key,
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

// Run sends the request. Deleting the absent item is not an error unless
// the condition requires the item.
func (b *DeleteBuilder) Run(ctx context.Context) error {
	req, err := b.Input()
	if err != nil {
		return err
	}

	b.client.logger.Debug("delete item",
		"table", b.client.table,
		"condition", aws.ToString(req.ConditionExpression),
	)

	_, err = b.client.service.DeleteItem(ctx, req)
	if err != nil {
		return b.client.classify("delete", req.ConditionExpression, err)
	}

	b.client.logger.Debug("delete item done", "table", b.client.table)
	return nil
}
