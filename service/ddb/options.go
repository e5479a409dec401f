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
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/fogfish/opts"
)

// DynamoDB declares interface of original AWS DynamoDB API used by the library
type DynamoDB interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Option type to configure the client
type Option = opts.Option[Options]

// Config Options
type Options struct {
	table   string
	prefix  string
	suffix  string
	logger  *slog.Logger
	service DynamoDB
}

func (c *Options) checkRequired() error {
	if c.service == nil {
		return errServiceNotDefined.New(nil)
	}
	return nil
}

var (
	// Set DynamoDB client for the client
	WithService = opts.ForType[Options, DynamoDB]()

	// Set DynamoDB client for the client
	WithDynamoDB = opts.ForType[Options, DynamoDB]()

	// Set structured logger, slog.Default() is used otherwise
	WithLogger = opts.ForType[Options, *slog.Logger]()

	// Override the table name declared by the schema
	WithTable = opts.FMap(optsTable)

	// Prefix table name, e.g. with deployment environment
	WithTablePrefix = opts.FMap(optsTablePrefix)

	// Suffix table name
	WithTableSuffix = opts.FMap(optsTableSuffix)

	// Configure client's DynamoDB to use provided the aws.Config
	WithConfig = opts.FMap(optsFromConfig)

	// Use default aws.Config for all DynamoDB clients
	WithDefaultDDB = opts.From(optsDefaultDDB)
)

func optsDefault() Options {
	return Options{
		logger: slog.Default(),
	}
}

func optsTable(c *Options, table string) error {
	c.table = table
	return nil
}

func optsTablePrefix(c *Options, prefix string) error {
	c.prefix = prefix
	return nil
}

func optsTableSuffix(c *Options, suffix string) error {
	c.suffix = suffix
	return nil
}

func optsDefaultDDB(c *Options) error {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return err
	}
	return optsFromConfig(c, cfg)
}

func optsFromConfig(c *Options, cfg aws.Config) error {
	if c.service == nil {
		c.service = dynamodb.NewFromConfig(cfg)
	}
	return nil
}
