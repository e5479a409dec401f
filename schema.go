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
)

// Attribute declares a single attribute of the record
type Attribute struct {
	// Name of attribute at DynamoDB
	Name string

	// Kind is wire type of attribute value
	Kind Kind

	// PartitionKey marks the attribute as table's partition (hash) key
	PartitionKey bool

	// SortKey marks the attribute as table's sort (range) key
	SortKey bool

	// Generated attribute is filled with fresh identifier if not defined
	Generated bool

	// Optional attribute is not required by the builder
	Optional bool

	// Default value of optional attribute, nil means the attribute is omitted
	Default any
}

// Schema is a static descriptor of the record type. It is fixed at
// declaration time and never mutated, so it is safe for concurrent use.
type Schema struct {
	table string
	attrs []Attribute
	index map[string]int
	pk    int
	sk    int
}

// NewSchema declares record schema for the table
//
//	var User = dynarec.MustSchema(
//	  dynarec.NewSchema("user",
//	    dynarec.Attribute{Name: "id", Kind: dynarec.KindString, PartitionKey: true},
//	    dynarec.Attribute{Name: "name", Kind: dynarec.KindString},
//	  ),
//	)
func NewSchema(table string, attrs ...Attribute) (*Schema, error) {
	if table == "" {
		return nil, errInvalidSchema.New(fmt.Errorf("table name is not defined"))
	}

	schema := &Schema{
		table: table,
		attrs: make([]Attribute, len(attrs)),
		index: make(map[string]int, len(attrs)),
		pk:    -1,
		sk:    -1,
	}

	for i, attr := range attrs {
		if attr.Name == "" {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: attribute #%d has no name", table, i))
		}

		if _, has := schema.index[attr.Name]; has {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: attribute %q is declared twice", table, attr.Name))
		}

		if attr.Kind == KindUndefined {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: attribute %q has undefined kind", table, attr.Name))
		}

		if attr.PartitionKey && attr.SortKey {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: attribute %q is both partition and sort key", table, attr.Name))
		}

		if attr.PartitionKey {
			if schema.pk != -1 {
				return nil, errInvalidSchema.New(fmt.Errorf("%s: partition key is declared twice", table))
			}
			schema.pk = i
		}

		if attr.SortKey {
			if schema.sk != -1 {
				return nil, errInvalidSchema.New(fmt.Errorf("%s: sort key is declared twice", table))
			}
			schema.sk = i
		}

		if (attr.PartitionKey || attr.SortKey) && !attr.Kind.IsKey() {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: key %q must be S, N or B, got %s", table, attr.Name, attr.Kind))
		}

		if (attr.PartitionKey || attr.SortKey) && attr.Optional {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: key %q cannot be optional", table, attr.Name))
		}

		if attr.Generated && attr.Kind != KindString {
			return nil, errInvalidSchema.New(fmt.Errorf("%s: generated attribute %q must be S, got %s", table, attr.Name, attr.Kind))
		}

		schema.attrs[i] = attr
		schema.index[attr.Name] = i
	}

	if schema.pk == -1 {
		return nil, errInvalidSchema.New(fmt.Errorf("%s: partition key is not declared", table))
	}

	return schema, nil
}

// MustSchema panics if schema is not valid
func MustSchema(schema *Schema, err error) *Schema {
	if err != nil {
		panic(err)
	}
	return schema
}

// Table name
func (s *Schema) Table() string { return s.table }

// Attributes in the order of declaration
func (s *Schema) Attributes() []Attribute {
	seq := make([]Attribute, len(s.attrs))
	copy(seq, s.attrs)
	return seq
}

// Attribute lookup by name
func (s *Schema) Attribute(name string) (Attribute, bool) {
	i, has := s.index[name]
	if !has {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// PartitionKey of the schema
func (s *Schema) PartitionKey() Attribute { return s.attrs[s.pk] }

// SortKey of the schema, if declared
func (s *Schema) SortKey() (Attribute, bool) {
	if s.sk == -1 {
		return Attribute{}, false
	}
	return s.attrs[s.sk], true
}

func (s *Schema) lookup(name string) (Attribute, error) {
	attr, has := s.Attribute(name)
	if !has {
		return Attribute{}, &UnknownAttribute{Attribute: name, Table: s.table}
	}
	return attr, nil
}
