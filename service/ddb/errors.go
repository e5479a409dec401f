//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package ddb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/fogfish/dynarec"
	"github.com/fogfish/faults"
)

const (
	errUndefinedSchema   = faults.Type("schema is not defined")
	errServiceNotDefined = faults.Type("DynamoDB service is not defined")
	errForeignRecord     = faults.Type("record belongs to other schema")
	errInvalidRecord     = faults.Type("invalid record")
)

// recover AWS ConditionalCheckFailedException and its message
func recoverConditionalCheckFailed(err error) (string, bool) {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ccf.ErrorMessage(), true
	}

	var api smithy.APIError
	if errors.As(err, &api) && api.ErrorCode() == "ConditionalCheckFailedException" {
		return api.ErrorMessage(), true
	}

	return "", false
}

// classify storage response into ConditionalCheckFailed or TransportError
func (c *Client) classify(op string, expr *string, err error) error {
	cond := ""
	if expr != nil {
		cond = *expr
	}

	if msg, ok := recoverConditionalCheckFailed(err); ok {
		c.logger.Info("conditional check failed",
			"op", op,
			"table", c.table,
			"condition", cond,
			"message", msg,
		)
		return &dynarec.ConditionalCheckFailed{Table: c.table, Message: msg, Err: err}
	}

	c.logger.Warn("service i/o failed",
		"op", op,
		"table", c.table,
		"condition", cond,
		"error", err,
	)
	return &dynarec.TransportError{Table: c.table, Err: err}
}
