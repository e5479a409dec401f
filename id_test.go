//
// Copyright (C) 2024 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/dynarec
//

package dynarec_test

import (
	"sync"
	"testing"

	"github.com/fogfish/dynarec"
	"github.com/fogfish/it"
)

func TestNewID(t *testing.T) {
	a := dynarec.NewID()
	b := dynarec.NewID()

	it.Ok(t).
		IfTrue(len(a) == 36).
		IfTrue(len(b) == 36).
		IfFalse(a == b)
}

func TestNewIDConcurrent(t *testing.T) {
	const n = 64

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = dynarec.NewID()
		}(i)
	}
	wg.Wait()

	seen := map[string]struct{}{}
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	it.Ok(t).If(len(seen)).Should().Equal(n)
}
