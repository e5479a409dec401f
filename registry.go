//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements registration table of schemas keyed by record type.
// Struct tags are read once, at declaration time.
//

package dynarec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fogfish/golem/hseq"
)

var registry = struct {
	sync.RWMutex
	schemas map[reflect.Type]*Schema
}{
	schemas: map[reflect.Type]*Schema{},
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register schema for the record type T
func Register[T any](schema *Schema) {
	registry.Lock()
	defer registry.Unlock()

	registry.schemas[typeOf[T]()] = schema
}

// SchemaFor returns schema registered for the record type T
func SchemaFor[T any]() (*Schema, error) {
	registry.RLock()
	defer registry.RUnlock()

	schema, has := registry.schemas[typeOf[T]()]
	if !has {
		return nil, errUndeclaredSchema.New(fmt.Errorf("%s", typeOf[T]()))
	}

	return schema, nil
}

// Declare derives schema from struct tags of type T and registers it.
// Attribute names and encoding options are read from `dynamodbav` tag,
// keys and generated identifiers are flagged with `dynarec` tag.
//
//	type User struct {
//	  ID   string `dynamodbav:"id" dynarec:"partition_key,uuid"`
//	  Name string `dynamodbav:"name"`
//	  Bio  string `dynamodbav:"bio,omitempty"`
//	}
//
//	var UserSchema = dynarec.MustSchema(dynarec.Declare[User]("user"))
func Declare[T any](table string) (*Schema, error) {
	if kind := typeOf[T]().Kind(); kind != reflect.Struct {
		return nil, errInvalidSchema.New(fmt.Errorf("%s is not a struct", typeOf[T]()))
	}

	attrs := make([]Attribute, 0)
	for _, t := range hseq.New[T]() {
		attr, ok, err := attributeOf(t.StructField)
		if err != nil {
			return nil, err
		}
		if ok {
			attrs = append(attrs, attr)
		}
	}

	schema, err := NewSchema(table, attrs...)
	if err != nil {
		return nil, err
	}

	Register[T](schema)
	return schema, nil
}

// tag of struct field
type tag struct {
	name      string
	omitempty bool
	stringset bool
	numberset bool
	binaryset bool
}

func tagOf(f reflect.StructField) (tag, bool) {
	val := f.Tag.Get("dynamodbav")
	if val == "-" {
		return tag{}, false
	}

	seq := strings.Split(val, ",")
	t := tag{name: seq[0]}
	if t.name == "" {
		t.name = f.Name
	}

	for _, opt := range seq[1:] {
		switch opt {
		case "omitempty":
			t.omitempty = true
		case "stringset":
			t.stringset = true
		case "numberset":
			t.numberset = true
		case "binaryset":
			t.binaryset = true
		}
	}

	return t, true
}

func attributeOf(f reflect.StructField) (Attribute, bool, error) {
	if !f.IsExported() {
		return Attribute{}, false, nil
	}

	t, ok := tagOf(f)
	if !ok {
		return Attribute{}, false, nil
	}

	kind, err := kindOfType(f.Type, t)
	if err != nil {
		return Attribute{}, false, errInvalidSchema.New(fmt.Errorf("field %s: %w", f.Name, err))
	}

	attr := Attribute{
		Name:     t.name,
		Kind:     kind,
		Optional: t.omitempty || f.Type.Kind() == reflect.Pointer,
	}

	for _, flag := range strings.Split(f.Tag.Get("dynarec"), ",") {
		switch strings.TrimSpace(flag) {
		case "partition_key":
			attr.PartitionKey = true
		case "sort_key":
			attr.SortKey = true
		case "uuid":
			attr.Generated = true
		}
	}

	if attr.PartitionKey || attr.SortKey {
		attr.Optional = false
	}

	return attr, true, nil
}

func kindOfType(t reflect.Type, tag tag) (Kind, error) {
	if t == typeOf[Number]() {
		return KindNumber, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return kindOfType(t.Elem(), tag)
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	case reflect.Slice:
		switch {
		case t.Elem().Kind() == reflect.Uint8:
			return KindBinary, nil
		case tag.stringset:
			return KindStringSet, nil
		case tag.numberset:
			return KindNumberSet, nil
		case tag.binaryset:
			return KindBinarySet, nil
		}
		return KindList, nil
	case reflect.Array:
		return KindList, nil
	case reflect.Map:
		return KindMap, nil
	case reflect.Struct:
		av, err := Encode(reflect.Zero(t).Interface())
		if err != nil {
			return KindUndefined, err
		}
		return KindOf(av), nil
	default:
		return KindUndefined, fmt.Errorf("unsupported type %s", t)
	}
}
