//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

// Package ddb implements conditional writes of typed records to AWS DynamoDB
package ddb

import (
	"log/slog"

	"github.com/fogfish/dynarec"
	"github.com/fogfish/opts"
)

// Client writes records of the schema into DynamoDB table.
// The client is safe for concurrent use, it holds no lock during I/O.
type Client struct {
	service DynamoDB
	schema  *dynarec.Schema
	table   string
	logger  *slog.Logger
}

// Must constraint for api factory
func Must(client *Client, err error) *Client {
	if err != nil {
		panic(err)
	}

	return client
}

// New creates DynamoDB client for records of the schema
//
//	db := ddb.Must(ddb.New(UserSchema, ddb.WithDefaultDDB()))
func New(schema *dynarec.Schema, opt ...Option) (*Client, error) {
	if schema == nil {
		return nil, errUndefinedSchema.New(nil)
	}

	c := optsDefault()
	if err := opts.Apply(&c, opt); err != nil {
		return nil, err
	}

	if err := c.checkRequired(); err != nil {
		return nil, err
	}

	table := c.table
	if table == "" {
		table = schema.Table()
	}

	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		service: c.service,
		schema:  schema,
		table:   c.prefix + table + c.suffix,
		logger:  logger,
	}, nil
}

// Table name used by the client
func (c *Client) Table() string { return c.table }

// Schema of records
func (c *Client) Schema() *dynarec.Schema { return c.schema }
