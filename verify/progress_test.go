package verify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	for i := 0; i < 10; i++ {
		tracker.Increment()
	}

	out := buf.String()
	assert.Contains(t, out, "scanned 5/10")
	assert.Contains(t, out, "scanned 10/10")
}

func TestProgressTracker_FinishReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 10)

	tracker.Start()
	tracker.Increment()
	tracker.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	assert.Contains(t, last, "scanned 1/3 in ")
}

func TestProgressTracker_IgnoresIncrementBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)

	tracker.Increment()
	assert.Empty(t, buf.String())
}

func TestProgressTracker_ClampsToTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2, 1)

	tracker.Start()
	tracker.Increment()
	tracker.Increment()
	tracker.Increment()
	tracker.Finish()

	assert.NotContains(t, buf.String(), "3/2")
}
