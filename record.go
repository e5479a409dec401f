//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Record is an instance of the schema, built by Builder.
// It is read-only for the rest of the library.
type Record struct {
	schema *Schema
	values map[string]any
	item   map[string]types.AttributeValue
}

// Schema of the record
func (r Record) Schema() *Schema { return r.schema }

// Get value of the attribute
func (r Record) Get(attr string) (any, bool) {
	val, has := r.values[attr]
	return val, has
}

// Attributes defined by the record, in the order of schema declaration
func (r Record) Attributes() []string {
	if r.schema == nil {
		return nil
	}

	seq := make([]string, 0, len(r.values))
	for _, attr := range r.schema.attrs {
		if _, has := r.values[attr.Name]; has {
			seq = append(seq, attr.Name)
		}
	}
	return seq
}

// Encode record into DynamoDB item. The returned map is owned by caller.
func (r Record) Encode() (map[string]types.AttributeValue, error) {
	if r.schema == nil {
		return nil, errUndeclaredSchema.New(fmt.Errorf("record is not built"))
	}

	gen := make(map[string]types.AttributeValue, len(r.item))
	for k, v := range r.item {
		gen[k] = v
	}
	return gen, nil
}

// EncodeKey encodes primary key of the schema. The sort key is required
// if the schema declares it.
func EncodeKey(schema *Schema, hashKey any, sortKey ...any) (map[string]types.AttributeValue, error) {
	if schema == nil {
		return nil, errUndeclaredSchema.New(fmt.Errorf("schema is not defined"))
	}

	pk := schema.PartitionKey()
	hkey, err := encodeAttribute(pk, hashKey)
	if err != nil {
		return nil, err
	}
	if isEmptyKey(hkey) {
		return nil, &InvalidKey{Attribute: pk.Name, Reason: "empty value"}
	}

	key := map[string]types.AttributeValue{pk.Name: hkey}

	sk, has := schema.SortKey()
	switch {
	case !has && len(sortKey) != 0:
		return nil, &InvalidKey{Attribute: pk.Name, Reason: "schema has no sort key"}
	case !has:
		return key, nil
	case len(sortKey) == 0:
		return nil, &MissingRequiredField{Attribute: sk.Name}
	}

	skey, err := encodeAttribute(sk, sortKey[0])
	if err != nil {
		return nil, err
	}
	if isEmptyKey(skey) {
		return nil, &InvalidKey{Attribute: sk.Name, Reason: "empty value"}
	}

	key[sk.Name] = skey
	return key, nil
}
