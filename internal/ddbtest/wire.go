//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

//
// The file implements DynamoDB JSON wire format of items stored by emulator
//

package ddbtest

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type wireValue struct {
	S    *string               `json:"S,omitempty"`
	N    *string               `json:"N,omitempty"`
	B    *[]byte               `json:"B,omitempty"`
	BOOL *bool                 `json:"BOOL,omitempty"`
	NULL *bool                 `json:"NULL,omitempty"`
	SS   *[]string             `json:"SS,omitempty"`
	NS   *[]string             `json:"NS,omitempty"`
	BS   *[][]byte             `json:"BS,omitempty"`
	M    *map[string]wireValue `json:"M,omitempty"`
	L    *[]wireValue          `json:"L,omitempty"`
}

func marshalItem(item map[string]types.AttributeValue) ([]byte, error) {
	wire, err := toWireMap(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func unmarshalItem(data []byte) (map[string]types.AttributeValue, error) {
	var wire map[string]wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return fromWireMap(wire)
}

func toWireMap(item map[string]types.AttributeValue) (map[string]wireValue, error) {
	wire := make(map[string]wireValue, len(item))
	for k, v := range item {
		w, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		wire[k] = w
	}
	return wire, nil
}

func toWire(av types.AttributeValue) (wireValue, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return wireValue{S: &v.Value}, nil
	case *types.AttributeValueMemberN:
		return wireValue{N: &v.Value}, nil
	case *types.AttributeValueMemberB:
		return wireValue{B: &v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return wireValue{BOOL: &v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return wireValue{NULL: &v.Value}, nil
	case *types.AttributeValueMemberSS:
		return wireValue{SS: &v.Value}, nil
	case *types.AttributeValueMemberNS:
		return wireValue{NS: &v.Value}, nil
	case *types.AttributeValueMemberBS:
		return wireValue{BS: &v.Value}, nil
	case *types.AttributeValueMemberM:
		m, err := toWireMap(v.Value)
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{M: &m}, nil
	case *types.AttributeValueMemberL:
		l := make([]wireValue, 0, len(v.Value))
		for _, x := range v.Value {
			w, err := toWire(x)
			if err != nil {
				return wireValue{}, err
			}
			l = append(l, w)
		}
		return wireValue{L: &l}, nil
	default:
		return wireValue{}, fmt.Errorf("unsupported attribute value %T", av)
	}
}

func fromWireMap(wire map[string]wireValue) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(wire))
	for k, w := range wire {
		av, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func fromWire(w wireValue) (types.AttributeValue, error) {
	switch {
	case w.S != nil:
		return &types.AttributeValueMemberS{Value: *w.S}, nil
	case w.N != nil:
		return &types.AttributeValueMemberN{Value: *w.N}, nil
	case w.B != nil:
		return &types.AttributeValueMemberB{Value: *w.B}, nil
	case w.BOOL != nil:
		return &types.AttributeValueMemberBOOL{Value: *w.BOOL}, nil
	case w.NULL != nil:
		return &types.AttributeValueMemberNULL{Value: *w.NULL}, nil
	case w.SS != nil:
		return &types.AttributeValueMemberSS{Value: *w.SS}, nil
	case w.NS != nil:
		return &types.AttributeValueMemberNS{Value: *w.NS}, nil
	case w.BS != nil:
		return &types.AttributeValueMemberBS{Value: *w.BS}, nil
	case w.M != nil:
		m, err := fromWireMap(*w.M)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case w.L != nil:
		l := make([]types.AttributeValue, 0, len(*w.L))
		for _, x := range *w.L {
			av, err := fromWire(x)
			if err != nil {
				return nil, err
			}
			l = append(l, av)
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	default:
		return nil, fmt.Errorf("undefined attribute value")
	}
}
