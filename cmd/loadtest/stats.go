package main

import (
	"math"
	"net"
	"sort"
	"time"
)

type Summary struct {
	Completed int
	Median    time.Duration
	P95       time.Duration
	FPS       float64
	ErrRate   float64
	TopErrs   []errCount
}

func summarize(results []Result) Summary {
	s := Summary{Completed: len(results)}
	if len(results) == 0 {
		return s
	}

	var durations []float64
	var errs []error
	var frames int
	var total time.Duration
	for _, r := range results {
		durations = append(durations, float64(r.Duration))
		errs = append(errs, r.Err)
		frames += r.Frames
		total += r.Duration
		if r.Err != nil {
			s.ErrRate++
		}
	}
	s.ErrRate /= float64(len(results))

	s.Median = time.Duration(percentile(durations, 0.5))
	s.P95 = time.Duration(percentile(durations, 0.95))
	if total > 0 {
		s.FPS = float64(frames) / total.Seconds()
	}
	s.TopErrs = topErrs(errs)
	return s
}

type errCountSlice []errCount

func (s errCountSlice) Len() int           { return len(s) }
func (s errCountSlice) Less(i, j int) bool { return s[i].Count > s[j].Count }
func (s errCountSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

type errCount struct {
	Err   error
	Count int
}

func topErrs(errs []error) []errCount {
	counts := map[string]errCount{}

	for _, e := range errs {
		msg := "<nil>"
		if ne, ok := e.(net.Error); ok && ne.Timeout() {
			msg = "i/o timeout" // remove ip because it's spammy otherwise
		} else if e != nil {
			msg = e.Error()
		}

		c, exist := counts[msg]
		if !exist {
			c.Err = e
		}

		c.Count++
		counts[msg] = c
	}

	var slice errCountSlice
	for _, c := range counts {
		slice = append(slice, c)
	}

	sort.Stable(slice)

	return slice
}

func percentile(xs []float64, perc float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	size := float64(len(xs))
	sort.Float64s(xs)

	i := perc * size
	if i < 1.0 {
		return xs[0]
	} else if i >= size {
		return xs[len(xs)-1]
	} else {
		frac := i - math.Floor(i)
		a := xs[int(i)-1]
		b := xs[int(i)]
		return a + frac*(b-a)
	}
}
