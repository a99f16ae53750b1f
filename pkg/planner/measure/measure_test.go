package measure_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-toolplan/pkg/planner/measure"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	mt := msr.AddMetric(measure.StagePaths, 1)

	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)
	mt.AddCount("found", 3)
	mt.AddCount("found", 2)
	mt.SetTotalDuration(time.Second)

	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, int64(2), mt.Calls())
	assert.Equal(t, map[string]int64{"found": 5}, mt.AllCounts())
	assert.Equal(t, time.Second, mt.GetTotalDuration())
	assert.Same(t, mt, msr.AddMetric(measure.StagePaths, 1))
	assert.Nil(t, msr.GetMetric("unknown"))
}

func TestAVGDurationConcurrent(t *testing.T) {
	t.Parallel()

	mt := measure.NewDefaultMeasure().AddMetric(measure.StageValidate, 4)
	assert.Equal(t, time.Duration(0), mt.AVGDuration())

	mt.AddDuration(8 * time.Millisecond)
	assert.Equal(t, 2*time.Millisecond, mt.AVGDuration())
}

func TestDefaultMeasureConcurrentUse(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			msr.AddMetric(measure.StageScope, 1).AddCount("tools", 1)
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(10), msr.GetMetric(measure.StageScope).AllCounts()["tools"])
}

func TestReport(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	msr.AddMetric(measure.StageScore, 1).AddDuration(time.Microsecond * 10)
	msr.AddMetric(measure.StagePaths, 1).AddCount("found", 1)

	report := measure.Report(msr)
	require.Len(t, report, 2)
	assert.Equal(t, measure.StagePaths, report[0].Stage)
	assert.Equal(t, measure.StageScore, report[1].Stage)
	assert.Equal(t, int64(1), report[1].Calls)
}

func TestPrometheusMeasure(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	msr := measure.NewPrometheusMeasure(reg)

	mt := msr.AddMetric(measure.StageRepair, 1)
	mt.AddDuration(time.Millisecond)
	mt.AddCount("inserted", 2)

	assert.Equal(t, int64(1), msr.GetMetric(measure.StageRepair).Calls())
	assert.Equal(t, map[string]int64{"inserted": 2}, msr.AllMetrics()[measure.StageRepair].AllCounts())

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]float64{}

	for _, family := range families {
		for _, m := range family.GetMetric() {
			switch {
			case m.GetHistogram() != nil:
				found[family.GetName()] = float64(m.GetHistogram().GetSampleCount())
			case m.GetCounter() != nil:
				found[family.GetName()] = m.GetCounter().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, found["toolplan_planner_stage_duration_seconds"])
	assert.Equal(t, 2.0, found["toolplan_planner_stage_items_total"])
}
