//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements codec between Go values and DynamoDB attribute values
//

package dynarec

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fogfish/curie/v2"
)

// Number is decimal number in its textual form. The codec keeps the text
// as-is, there is no reinterpretation via binary floating point.
type Number string

// decimal literal accepted by DynamoDB as N
var decimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// NewNumber validates the textual form of decimal number
func NewNumber(s string) (Number, error) {
	if !decimal.MatchString(s) {
		return "", errInvalidNumber.New(fmt.Errorf("%q is not a decimal", s))
	}
	return Number(s), nil
}

func (n Number) String() string { return string(n) }

// Encode Go value to DynamoDB attribute value.
//
//	nil                  ⟼ NULL
//	string, curie.IRI    ⟼ S
//	Number, int*, uint*  ⟼ N
//	float*               ⟼ N (shortest exact text)
//	bool                 ⟼ BOOL
//	[]byte               ⟼ B
//
// Anything else is encoded with attributevalue.Marshal.
func Encode(val any) (types.AttributeValue, error) {
	switch v := val.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case types.AttributeValue:
		return v, nil
	case string:
		return &types.AttributeValueMemberS{Value: v}, nil
	case curie.IRI:
		return &types.AttributeValueMemberS{Value: string(v)}, nil
	case Number:
		if _, err := NewNumber(string(v)); err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberN{Value: string(v)}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: v}, nil
	case []byte:
		if v == nil {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		return &types.AttributeValueMemberB{Value: v}, nil
	}

	n, ok, err := numberOf(reflect.ValueOf(val))
	if err != nil {
		return nil, err
	}
	if ok {
		return &types.AttributeValueMemberN{Value: n}, nil
	}

	return attributevalue.Marshal(val)
}

// EncodeAs encodes Go value into attribute value of declared kind.
// Sets are only produced by this function, Go slices are lists otherwise.
func EncodeAs(kind Kind, val any) (types.AttributeValue, error) {
	var (
		av  types.AttributeValue
		err error
	)

	switch kind {
	case KindStringSet:
		av, err = encodeStringSet(val)
	case KindNumberSet:
		av, err = encodeNumberSet(val)
	case KindBinarySet:
		av, err = encodeBinarySet(val)
	default:
		av, err = Encode(val)
	}
	if err != nil {
		return nil, err
	}

	if actual := KindOf(av); actual != kind {
		return nil, &TypeMismatch{Expected: kind, Actual: actual}
	}

	return av, nil
}

func encodeStringSet(val any) (types.AttributeValue, error) {
	switch v := val.(type) {
	case []string:
		return &types.AttributeValueMemberSS{Value: v}, nil
	case []curie.IRI:
		seq := make([]string, len(v))
		for i, x := range v {
			seq[i] = string(x)
		}
		return &types.AttributeValueMemberSS{Value: seq}, nil
	}
	return Encode(val)
}

func encodeNumberSet(val any) (types.AttributeValue, error) {
	if v, ok := val.([]Number); ok {
		seq := make([]string, len(v))
		for i, x := range v {
			if _, err := NewNumber(string(x)); err != nil {
				return nil, err
			}
			seq[i] = string(x)
		}
		return &types.AttributeValueMemberNS{Value: seq}, nil
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice {
		return Encode(val)
	}

	seq := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, ok, err := numberOf(rv.Index(i))
		if err != nil {
			return nil, err
		}
		if !ok {
			return Encode(val)
		}
		seq[i] = n
	}

	return &types.AttributeValueMemberNS{Value: seq}, nil
}

func encodeBinarySet(val any) (types.AttributeValue, error) {
	if v, ok := val.([][]byte); ok {
		return &types.AttributeValueMemberBS{Value: v}, nil
	}
	return Encode(val)
}

// numberOf returns textual form of Go numeric value.
// NaN and infinities have no N representation.
func numberOf(v reflect.Value) (string, bool, error) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false, errInvalidNumber.New(fmt.Errorf("%v is not a decimal", f))
		}
		bits := 64
		if v.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.FormatFloat(f, 'f', -1, bits), true, nil
	default:
		return "", false, nil
	}
}

// Decode attribute value of expected kind into Go value behind the pointer.
// It fails with TypeMismatch if the wire tag differs from the expected kind.
func Decode(av types.AttributeValue, kind Kind, val any) error {
	if actual := KindOf(av); actual != kind {
		return &TypeMismatch{Expected: kind, Actual: actual}
	}

	switch v := val.(type) {
	case *string:
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			*v = s.Value
			return nil
		}
	case *curie.IRI:
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			*v = curie.IRI(s.Value)
			return nil
		}
	case *Number:
		if n, ok := av.(*types.AttributeValueMemberN); ok {
			*v = Number(n.Value)
			return nil
		}
	case *bool:
		if b, ok := av.(*types.AttributeValueMemberBOOL); ok {
			*v = b.Value
			return nil
		}
	case *[]byte:
		if b, ok := av.(*types.AttributeValueMemberB); ok {
			*v = b.Value
			return nil
		}
	case *[]Number:
		if ns, ok := av.(*types.AttributeValueMemberNS); ok {
			seq := make([]Number, len(ns.Value))
			for i, x := range ns.Value {
				seq[i] = Number(x)
			}
			*v = seq
			return nil
		}
	}

	if err := attributevalue.Unmarshal(av, val); err != nil {
		return errInvalidTarget.New(fmt.Errorf("%s into %T: %w", kind, val, err))
	}

	return nil
}

// DecodeAs is generic variant of Decode
//
//	name, err := dynarec.DecodeAs[string](av, dynarec.KindString)
func DecodeAs[A any](av types.AttributeValue, kind Kind) (A, error) {
	var val A
	if err := Decode(av, kind, &val); err != nil {
		return *new(A), err
	}
	return val, nil
}
