//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Kind is the wire type tag of DynamoDB attribute value
type Kind int

const (
	KindUndefined Kind = iota
	KindString
	KindNumber
	KindBinary
	KindBool
	KindNull
	KindStringSet
	KindNumberSet
	KindBinarySet
	KindMap
	KindList
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindString:    "S",
	KindNumber:    "N",
	KindBinary:    "B",
	KindBool:      "BOOL",
	KindNull:      "NULL",
	KindStringSet: "SS",
	KindNumberSet: "NS",
	KindBinarySet: "BS",
	KindMap:       "M",
	KindList:      "L",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUndefined]
	}
	return kindNames[k]
}

// IsKey returns true if attribute of the kind is usable as table key
func (k Kind) IsKey() bool {
	return k == KindString || k == KindNumber || k == KindBinary
}

// KindOf returns the wire tag of the attribute value
func KindOf(av types.AttributeValue) Kind {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return KindString
	case *types.AttributeValueMemberN:
		return KindNumber
	case *types.AttributeValueMemberB:
		return KindBinary
	case *types.AttributeValueMemberBOOL:
		return KindBool
	case *types.AttributeValueMemberNULL:
		return KindNull
	case *types.AttributeValueMemberSS:
		return KindStringSet
	case *types.AttributeValueMemberNS:
		return KindNumberSet
	case *types.AttributeValueMemberBS:
		return KindBinarySet
	case *types.AttributeValueMemberM:
		return KindMap
	case *types.AttributeValueMemberL:
		return KindList
	default:
		return KindUndefined
	}
}
