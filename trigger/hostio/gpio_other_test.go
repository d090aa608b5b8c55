// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package hostio

import "testing"

func TestOpen_unsupported(t *testing.T) {
	if _, err := Open(4); err == nil {
		t.Fatal("expected an error on a non-linux host")
	}
}

func TestStubPin(t *testing.T) {
	p := &Pin{}
	if p.WaitForEdge(0) {
		t.Fatal("stub pin should never report an edge")
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
