package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for range 3 {
		Track("pipeline.DrawAll")()
	}
	Track("pipeline.PrepareBasic")()

	assert.Equal(t, 3, Count("pipeline.DrawAll"))
	assert.Len(t, Snapshot(), 2)

	ResetFrame()
	assert.Empty(t, Snapshot())
	assert.Zero(t, Count("pipeline.DrawAll"))
}

func TestTopN(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["slow"] = 4200 * time.Microsecond
	frameTotals["fast"] = 2 * time.Millisecond
	frameTotals["idle"] = 0
	mu.Unlock()

	assert.Equal(t, "slow:4.2ms, fast:2ms", TopN(2))
	assert.Equal(t, 3, len(strings.Split(TopN(10), ", ")))
	assert.Empty(t, TopN(0))
	assert.Empty(t, TopN(-1))
	ResetFrame()
}
