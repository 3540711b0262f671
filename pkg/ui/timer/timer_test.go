package timer_test

import (
	"testing"
	"time"

	"github.com/berth-dev/berth/pkg/ui/timer"
	"github.com/stretchr/testify/assert"
)

func TestGetTimingBeforeStart(t *testing.T) {
	t.Parallel()

	tmr := timer.New()

	total, stage := tmr.GetTiming()
	assert.Equal(t, time.Duration(0), total)
	assert.Equal(t, time.Duration(0), stage)
}

func TestNewStageResetsStageClock(t *testing.T) {
	t.Parallel()

	tmr := timer.New()
	tmr.Start()

	time.Sleep(20 * time.Millisecond)
	tmr.NewStage()

	total, stage := tmr.GetTiming()
	assert.GreaterOrEqual(t, total, stage)
}

func TestStartResetsTimer(t *testing.T) {
	t.Parallel()

	tmr := timer.New()
	tmr.Start()
	time.Sleep(10 * time.Millisecond)
	tmr.Start()

	total, _ := tmr.GetTiming()
	assert.Less(t, total, 10*time.Millisecond)
}
