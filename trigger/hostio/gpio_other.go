// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package hostio

import (
	"errors"
	"time"
)

// Pin is a stub on non-Linux hosts; sysfs GPIO is Linux-only.
type Pin struct{}

// Open always fails outside Linux.
func Open(number int) (*Pin, error) {
	return nil, errors.New("hostio: sysfs GPIO is only supported on linux")
}

// WaitForEdge never returns true on the stub implementation.
func (p *Pin) WaitForEdge(timeout time.Duration) bool { return false }

// Close is a no-op on the stub implementation.
func (p *Pin) Close() error { return nil }
