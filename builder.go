//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/golem/hseq"
)

// Builder accumulates attributes of the record. Use one builder per write,
// builder is not safe for concurrent use.
type Builder struct {
	schema    *Schema
	values    map[string]any
	unknown   []string
	generator Generator
	err       error
}

// NewBuilder creates builder of records for the schema
func NewBuilder(schema *Schema) *Builder {
	return &Builder{
		schema:    schema,
		values:    map[string]any{},
		generator: NewID,
	}
}

// BuilderFor creates builder seeded with fields of struct. The schema is
// one registered for type T (see Declare). Zero values of optional and
// generated attributes are treated as not defined.
//
//	rec, err := dynarec.BuilderFor(User{Name: "bokuweb"}).Build()
func BuilderFor[T any](val T) *Builder {
	schema, err := SchemaFor[T]()
	if err != nil {
		return &Builder{err: err}
	}

	b := NewBuilder(schema)
	rv := reflect.ValueOf(val)
	for _, t := range hseq.New[T]() {
		tag, ok := tagOf(t.StructField)
		if !ok || !t.IsExported() {
			continue
		}

		attr, has := schema.Attribute(tag.name)
		if !has {
			continue
		}

		fv := rv.FieldByIndex(t.Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		if fv.IsZero() && (attr.Optional || attr.Generated) {
			continue
		}

		b.Set(attr.Name, fv.Interface())
	}

	return b
}

// WithGenerator overrides identifier generator used for generated attributes
func (b *Builder) WithGenerator(g Generator) *Builder {
	b.generator = g
	return b
}

// Set attribute value, the last write wins.
func (b *Builder) Set(attr string, val any) *Builder {
	if b.schema == nil {
		return b
	}

	if _, has := b.schema.Attribute(attr); !has {
		b.unknown = append(b.unknown, attr)
		return b
	}

	b.values[attr] = val
	return b
}

// Build the record. Builder is not modified, repeated builds are independent
// from each other.
func (b *Builder) Build() (Record, error) {
	if b.err != nil {
		return Record{}, b.err
	}

	if b.schema == nil {
		return Record{}, errUndeclaredSchema.New(fmt.Errorf("builder has no schema"))
	}

	if len(b.unknown) != 0 {
		return Record{}, &UnknownAttribute{Attribute: b.unknown[0], Table: b.schema.table}
	}

	values := make(map[string]any, len(b.schema.attrs))
	item := make(map[string]types.AttributeValue, len(b.schema.attrs))

	for _, attr := range b.schema.attrs {
		val, has := b.values[attr.Name]
		if has && val == nil && attr.Optional {
			continue
		}

		if !has {
			switch {
			case attr.Generated:
				val = b.generator()
			case attr.Optional && attr.Default == nil:
				continue
			case attr.Optional:
				val = attr.Default
			default:
				return Record{}, &MissingRequiredField{Attribute: attr.Name}
			}
		}

		av, err := encodeAttribute(attr, val)
		if err != nil {
			return Record{}, err
		}

		if (attr.PartitionKey || attr.SortKey) && isEmptyKey(av) {
			return Record{}, &InvalidKey{Attribute: attr.Name, Reason: "empty value"}
		}

		values[attr.Name] = val
		item[attr.Name] = av
	}

	return Record{schema: b.schema, values: values, item: item}, nil
}

func encodeAttribute(attr Attribute, val any) (types.AttributeValue, error) {
	av, err := EncodeAs(attr.Kind, val)
	if err == nil {
		return av, nil
	}

	var tm *TypeMismatch
	if errors.As(err, &tm) {
		return nil, &TypeMismatch{Attribute: attr.Name, Expected: tm.Expected, Actual: tm.Actual, Err: tm.Err}
	}

	return nil, &TypeMismatch{Attribute: attr.Name, Expected: attr.Kind, Actual: KindUndefined, Err: err}
}

func isEmptyKey(av types.AttributeValue) bool {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value == ""
	case *types.AttributeValueMemberN:
		return v.Value == ""
	case *types.AttributeValueMemberB:
		return len(v.Value) == 0
	default:
		return true
	}
}
