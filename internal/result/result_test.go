package result_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/keval-dev/keval/internal/result"
)

func TestCollectorConcurrentAdds(t *testing.T) {
	var c result.Collector
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := result.StatusSucceeded
			if i%4 == 0 {
				status = result.StatusFailed
			}
			c.Add(result.Record{
				SampleID:   fmt.Sprintf("%02d", i%10),
				Condition:  "baseline",
				Repetition: i / 10,
				Status:     status,
			})
		}(i)
	}
	wg.Wait()

	if c.Len() != 100 {
		t.Fatalf("got %d records, want 100", c.Len())
	}
	succeeded, failed := c.Counts()
	if succeeded != 75 || failed != 25 {
		t.Errorf("got %d succeeded, %d failed; want 75/25", succeeded, failed)
	}
}

func TestCollectorRecordsSorted(t *testing.T) {
	var c result.Collector
	c.Add(result.Record{SampleID: "1", Condition: "b", Repetition: 1})
	c.Add(result.Record{SampleID: "0", Condition: "b", Repetition: 0})
	c.Add(result.Record{SampleID: "1", Condition: "a", Repetition: 0})
	c.Add(result.Record{SampleID: "1", Condition: "b", Repetition: 0})

	records := c.Records()
	type key struct {
		cond, id string
		rep      int
	}
	want := []key{
		{"a", "1", 0},
		{"b", "0", 0},
		{"b", "1", 0},
		{"b", "1", 1},
	}
	for i, w := range want {
		r := records[i]
		if r.Condition != w.cond || r.SampleID != w.id || r.Repetition != w.rep {
			t.Errorf("record %d: got (%s, %s, %d), want (%s, %s, %d)",
				i, r.Condition, r.SampleID, r.Repetition, w.cond, w.id, w.rep)
		}
	}
}
