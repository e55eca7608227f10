package histogram

import (
	"fmt"
	"math"
	"time"

	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// NumBuckets is the fixed histogram width.
const NumBuckets = 25

const (
	bucketLabelLayout = "01-02\n15:04:05"
	rangeLabelLayout  = "2006-01-02 15:04:05"
)

// Bucket is one fixed-width time interval of the histogram.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	// Height is the display height, linearly scaled to [10, 100] against
	// the fullest bucket.
	Height int `json:"height"`
}

// Result is one histogram run. A run over an empty set has nil buckets and
// ticks and empty labels.
type Result struct {
	Buckets       []Bucket `json:"buckets"`
	IntervalLabel string   `json:"interval_label"`
	YTicks        []int    `json:"y_ticks"`
	RangeStart    string   `json:"range_start"`
	RangeEnd      string   `json:"range_end"`
}

// Build partitions [minTs, maxTs] of the event set into 25 equal buckets and
// counts events per bucket. The span is floored to one second so coinciding
// timestamps never divide by zero.
func Build(events []*ecs.Event) Result {
	var stamps []time.Time
	for _, e := range events {
		if !e.TimestampValue.IsZero() {
			stamps = append(stamps, e.TimestampValue)
		}
	}
	if len(stamps) == 0 {
		return Result{}
	}

	minTs, maxTs := stamps[0], stamps[0]
	for _, ts := range stamps[1:] {
		if ts.Before(minTs) {
			minTs = ts
		}
		if ts.After(maxTs) {
			maxTs = ts
		}
	}

	totalSeconds := maxTs.Sub(minTs).Seconds()
	if totalSeconds <= 0 {
		totalSeconds = 1.0
	}
	intervalSec := totalSeconds / NumBuckets

	counts := make([]int, NumBuckets)
	for _, ts := range stamps {
		idx := int(ts.Sub(minTs).Seconds() / intervalSec)
		if idx >= NumBuckets {
			// guards floating-point overshoot at the maximum timestamp
			idx = NumBuckets - 1
		}
		counts[idx]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	buckets := make([]Bucket, 0, NumBuckets)
	for i := 0; i < NumBuckets; i++ {
		start := minTs.Add(time.Duration(float64(i) * intervalSec * float64(time.Second)))
		height := 10
		if maxCount > 0 {
			height = 10 + int(90*float64(counts[i])/float64(maxCount))
		}
		buckets = append(buckets, Bucket{
			Label:  start.UTC().Format(bucketLabelLayout),
			Count:  counts[i],
			Height: height,
		})
	}

	return Result{
		Buckets:       buckets,
		IntervalLabel: prettyInterval(intervalSec),
		YTicks:        yTicks(maxCount),
		RangeStart:    minTs.UTC().Format(rangeLabelLayout),
		RangeEnd:      maxTs.UTC().Format(rangeLabelLayout),
	}
}

// yTicks produces integer axis ticks from 0 to maxCount in steps of
// ceil(maxCount/5), minimum 1, with maxCount always the final tick.
func yTicks(maxCount int) []int {
	if maxCount <= 0 {
		return []int{0}
	}
	step := int(math.Ceil(float64(maxCount) / 5))
	if step < 1 {
		step = 1
	}
	var ticks []int
	for t := 0; t <= maxCount; t += step {
		ticks = append(ticks, t)
	}
	if ticks[len(ticks)-1] != maxCount {
		ticks = append(ticks, maxCount)
	}
	return ticks
}

func prettyInterval(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%d s", int(seconds))
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%.1f min", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%.1f h", hours)
	}
	return fmt.Sprintf("%.1f d", hours/24)
}
