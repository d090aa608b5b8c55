// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package toothlog

import "testing"

func TestLoggerToothMode(t *testing.T) {
	l := &Logger{Mode: ModeToothLog}
	l.LogTooth(5000)
	l.LogTooth(5010)
	if got := l.ToothHistory(); len(got) != 2 || got[0] != 5000 || got[1] != 5010 {
		t.Fatalf("unexpected history %v", got)
	}
	if l.Ready {
		t.Fatal("should not be ready yet")
	}
}

func TestLoggerFillsAndSetsReady(t *testing.T) {
	l := &Logger{Mode: ModeToothLog}
	for i := 0; i < Size; i++ {
		l.LogTooth(uint32(i))
	}
	if !l.Ready {
		t.Fatal("expected Ready once capacity reached")
	}
	before := l.Index()
	l.LogTooth(999) // should be dropped, buffer full
	if l.Index() != before {
		t.Fatal("should stop writing once Ready")
	}
}

func TestLoggerClearResumesRecording(t *testing.T) {
	l := &Logger{Mode: ModeToothLog}
	for i := 0; i < Size; i++ {
		l.LogTooth(uint32(i))
	}
	l.Clear()
	if l.Ready {
		t.Fatal("Clear should reset Ready")
	}
	l.LogTooth(42)
	if got := l.ToothHistory(); len(got) != 1 || got[0] != 42 {
		t.Fatalf("unexpected history after clear: %v", got)
	}
}

func TestLoggerCompositeMode(t *testing.T) {
	l := &Logger{Mode: ModeComposite}
	l.LogComposite(1000, true, false, true, true)
	hist := l.CompositeHistory()
	if len(hist) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hist))
	}
	want := FlagPriLevel | FlagIsCamEdge | FlagSyncAtTime
	if hist[0].Flags != want || hist[0].Time != 1000 {
		t.Fatalf("unexpected entry %+v, want flags %v", hist[0], want)
	}
}

func TestLoggerModesAreMutuallyExclusive(t *testing.T) {
	l := &Logger{Mode: ModeComposite}
	l.LogTooth(123) // wrong mode, must be ignored
	if l.Index() != 0 {
		t.Fatal("LogTooth should be a no-op outside ModeToothLog")
	}
}
