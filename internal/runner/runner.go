// Package runner expands the evaluation matrix into units and executes them
// under bounded concurrency with per-unit failure isolation.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/keval-dev/keval/internal/agent"
	"github.com/keval-dev/keval/internal/config"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/observer"
	"github.com/keval-dev/keval/internal/result"
	"github.com/keval-dev/keval/internal/retry"
)

// Runner executes planned units. One unit failing never stops the others;
// only cancellation stops admission of new units.
type Runner struct {
	Agent         agent.Agent
	Judge         judge.Judge
	Samples       map[string]dataset.Sample
	Conditions    map[string]config.Condition
	Servers       map[string]config.Server
	Retry         retry.Policy
	MaxConcurrent int
	Observer      observer.Observer
}

// Run executes all units and returns the collected records, sorted. Records
// from units that completed before cancellation are always preserved.
func (r *Runner) Run(ctx context.Context, units []Unit) []result.Record {
	obs := r.Observer
	if obs == nil {
		obs = observer.Nop{}
	}

	var (
		collector result.Collector
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	sem := make(chan struct{}, r.MaxConcurrent)
	total := len(units)

admission:
	for _, unit := range units {
		// Checked before the select: when cancellation and a free slot are
		// both ready, select picks at random and could admit one more unit.
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break admission
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(u Unit) {
			defer wg.Done()
			defer func() { <-sem }()

			collector.Add(r.executeUnit(ctx, u, obs))

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			obs.Progress(done, total)
		}(unit)
	}
	wg.Wait()

	return collector.Records()
}

func (r *Runner) executeUnit(ctx context.Context, u Unit, obs observer.Observer) result.Record {
	ou := observer.Unit{SampleID: u.SampleID, Condition: u.Condition, Repetition: u.Repetition}
	obs.UnitStarted(ou)

	sample := r.Samples[u.SampleID]
	condition := r.Conditions[u.Condition]

	record := result.Record{
		SampleID:   u.SampleID,
		Condition:  u.Condition,
		Repetition: u.Repetition,
	}

	agentRes, err := retry.Do(ctx, r.Retry, r.retryNotify(ou, obs), func(ctx context.Context) (*agent.Result, error) {
		return r.Agent.Query(ctx, agent.Query{
			Question:     sample.Question,
			SystemPrompt: condition.SystemPrompt,
			Servers:      r.namedServers(condition),
		})
	})
	if err != nil {
		record.Status = result.StatusFailed
		record.Stage = result.StageAgent
		record.Reason = err.Error()
		obs.UnitFailed(ou, string(result.StageAgent), err.Error())
		return record
	}
	record.Agent = agentRes

	judgeRes, err := retry.Do(ctx, r.Retry, r.retryNotify(ou, obs), func(ctx context.Context) (*judge.Result, error) {
		res, err := r.Judge.Score(ctx, judge.ScoreRequest{
			Question:     sample.Question,
			GoldenAnswer: sample.Answer,
			Response:     agentRes.Response,
		})
		if err != nil {
			return nil, err
		}
		if err := res.Validate(); err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		record.Status = result.StatusFailed
		record.Stage = result.StageJudge
		record.Reason = err.Error()
		obs.UnitFailed(ou, string(result.StageJudge), err.Error())
		return record
	}
	record.Judge = judgeRes
	record.Status = result.StatusSucceeded
	obs.UnitCompleted(ou)
	return record
}

func (r *Runner) retryNotify(u observer.Unit, obs observer.Observer) retry.Notify {
	return func(attempt int, delay time.Duration, err error) {
		obs.UnitRetry(u, attempt, delay, err.Error())
	}
}

// namedServers resolves the condition's server references in declaration
// order. The planner has already verified every reference exists.
func (r *Runner) namedServers(c config.Condition) []config.NamedServer {
	if len(c.MCPServers) == 0 {
		return nil
	}
	servers := make([]config.NamedServer, 0, len(c.MCPServers))
	for _, name := range c.MCPServers {
		servers = append(servers, config.NamedServer{Name: name, Server: r.Servers[name]})
	}
	return servers
}
