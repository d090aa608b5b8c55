// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hostio drives a single crank/cam trigger input off Linux's sysfs
// GPIO interface (/sys/class/gpio). It is not a general purpose GPIO
// package: it exports exactly what cmd/triggersim's live subcommand needs
// to wait on a rising edge and nothing else.
package hostio

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
	"time"
)

// Pin is a single sysfs GPIO input, configured for rising-edge interrupts.
type Pin struct {
	number int
	value  *os.File
	epfd   int
	ev     [1]syscall.EpollEvent
}

// Open exports GPIO number, configures it as a rising-edge input and
// arms an epoll watch on its value file.
//
// number is the Linux sysfs GPIO number (the N in /sys/class/gpio/gpioN),
// not a board-silkscreen pin name: unlike periph's gpioreg, this package
// carries no per-board pin tables.
func Open(number int) (*Pin, error) {
	exportPath := "/sys/class/gpio/export"
	gpioPath := fmt.Sprintf("/sys/class/gpio/gpio%d", number)

	if _, err := os.Stat(gpioPath); os.IsNotExist(err) {
		f, err := os.OpenFile(exportPath, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("hostio: open %s: %w", exportPath, err)
		}
		_, werr := f.Write([]byte(strconv.Itoa(number)))
		f.Close()
		if werr != nil {
			return nil, fmt.Errorf("hostio: export gpio%d: %w", number, werr)
		}
	}

	if err := writeFile(gpioPath+"/direction", "in"); err != nil {
		return nil, fmt.Errorf("hostio: gpio%d direction: %w", number, err)
	}
	if err := writeFile(gpioPath+"/edge", "rising"); err != nil {
		return nil, fmt.Errorf("hostio: gpio%d edge: %w", number, err)
	}

	value, err := os.OpenFile(gpioPath+"/value", os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("hostio: gpio%d value: %w", number, err)
	}

	p := &Pin{number: number, value: value}
	epfd, err := syscall.EpollCreate(1)
	if err != nil {
		value.Close()
		return nil, fmt.Errorf("hostio: epoll_create: %w", err)
	}
	const epollpri = 2
	const epollet = 1 << 31
	p.ev[0].Events = epollpri | epollet
	p.ev[0].Fd = int32(value.Fd())
	if err := syscall.EpollCtl(epfd, syscall.EPOLL_CTL_ADD, int(value.Fd()), &p.ev[0]); err != nil {
		value.Close()
		syscall.Close(epfd)
		return nil, fmt.Errorf("hostio: epoll_ctl: %w", err)
	}
	p.epfd = epfd
	return p, nil
}

// WaitForEdge blocks until a rising edge is observed on the pin or timeout
// elapses. A negative timeout waits forever.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout / time.Millisecond)
	}
	n, err := syscall.EpollWait(p.epfd, p.ev[:], timeoutMs)
	if err != nil || n == 0 {
		return false
	}
	// Drain the value file; sysfs requires a seek+read to re-arm the edge
	// notification for the next wait.
	var buf [1]byte
	_, _ = p.value.Seek(0, 0)
	_, _ = p.value.Read(buf[:])
	return true
}

// Close unexports the pin and releases its file handles.
func (p *Pin) Close() error {
	syscall.Close(p.epfd)
	p.value.Close()
	f, err := os.OpenFile("/sys/class/gpio/unexport", os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(strconv.Itoa(p.number)))
	return err
}

func writeFile(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(value))
	return err
}
