package catalog

import (
	"testing"
	"time"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := newPacer(100)
	start := time.Now()
	for i := 0; i < 3; i++ {
		p.wait()
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("three calls finished in %v", elapsed)
	}
}

func TestPacerClampsRate(t *testing.T) {
	if p := newPacer(0); p.interval != time.Second {
		t.Fatalf("interval: %v", p.interval)
	}
	if p := newPacer(-5); p.interval != time.Second {
		t.Fatalf("interval: %v", p.interval)
	}
}
