// Package campaign drives a differential-testing run: every configured
// counter against every instance, counts compared per instance, results
// flushed durably after each instance completes.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"countercheck/internal/config"
	"countercheck/internal/counts"
	"countercheck/internal/invoke"
	"countercheck/internal/store"
	"countercheck/internal/verify"
)

// Campaign holds everything needed to run one differential-testing pass.
type Campaign struct {
	ID       string
	Prefix   string
	Seed     int64
	Counters []config.Tool
	Opts     invoke.Options

	// OutDir receives the problematic-instances list and other artifacts.
	OutDir string

	// Jobs bounds instance-level parallelism. Zero or one means
	// sequential.
	Jobs int

	// Verified supplies ground truth by instance path. May be nil.
	Verified map[string]verify.Result

	// ProofDir and CleanProofs control proof-artifact cleanup for
	// instances whose counters all agree.
	ProofDir    string
	CleanProofs bool

	Store *store.Store
}

// New fills in the identity fields of a campaign for the given seed.
func New(seed int64) *Campaign {
	return &Campaign{
		ID:     uuid.Must(uuid.NewV7()).String(),
		Prefix: Prefix(time.Now(), seed),
		Seed:   seed,
	}
}

// Prefix builds the output-file prefix shared by all artifacts of one run.
func Prefix(now time.Time, seed int64) string {
	return fmt.Sprintf("%s_s%d", now.Format("2006-01-02"), seed)
}

// Summary totals one campaign run.
type Summary struct {
	Instances     int
	Runs          int
	Agreements    int
	Disagreements int
	Errors        int
	Problematic   []string
}

// instanceVerdict is the unit of work handed to the flush path.
type instanceVerdict struct {
	instance    string
	runs        []store.Run
	agreement   string
	problematic bool
	errored     bool
}

// Run executes the campaign over the given instances. Per-instance results
// are flushed to the store and the problematic-instances list as each
// instance completes, so a crash loses at most the in-flight instances.
func (c *Campaign) Run(ctx context.Context, instances []string) (Summary, error) {
	if len(c.Counters) == 0 {
		return Summary{}, fmt.Errorf("campaign %s: no counters configured", c.ID)
	}
	slog.Info("starting campaign", "id", c.ID, "prefix", c.Prefix,
		"counters", len(c.Counters), "instances", len(instances), "jobs", c.Jobs)

	var (
		mu      sync.Mutex
		summary Summary
	)
	flush := func(v instanceVerdict) error {
		mu.Lock()
		defer mu.Unlock()
		if err := c.Store.AppendRuns(ctx, c.ID, v.runs); err != nil {
			return err
		}
		summary.Instances++
		summary.Runs += len(v.runs)
		switch v.agreement {
		case "agree":
			summary.Agreements++
		case "disagree":
			summary.Disagreements++
		}
		if v.errored {
			summary.Errors++
		}
		if v.problematic {
			summary.Problematic = append(summary.Problematic, v.instance)
			sort.Strings(summary.Problematic)
		}
		return WriteProblematic(c.OutDir, c.Prefix, summary.Problematic)
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.Jobs > 1 {
		g.SetLimit(c.Jobs)
	} else {
		g.SetLimit(1)
	}
	for _, inst := range instances {
		inst := inst
		g.Go(func() error {
			v := c.processInstance(gctx, inst)
			if err := gctx.Err(); err != nil {
				return err
			}
			return flush(v)
		})
	}
	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("campaign %s: %w", c.ID, err)
	}

	c.logEpilogue(summary)
	return summary, nil
}

// processInstance runs every counter on one instance and compares the
// normalized counts.
func (c *Campaign) processInstance(ctx context.Context, instance string) instanceVerdict {
	v := instanceVerdict{instance: instance}

	byTool := map[string]string{}
	var ground *verify.Result
	if gv, ok := c.Verified[instance]; ok && gv.Verified {
		ground = &gv
		byTool[counts.VerifiedCountTool] = gv.VerifiedCount
	}

	for _, tool := range c.Counters {
		rr := invoke.RunCounter(ctx, tool, instance, c.Opts)
		if rr.Errored {
			byTool[tool.Name] = ""
			v.errored = true
		} else {
			// A timed-out counter that still produced a count is
			// compared like any other.
			byTool[tool.Name] = rr.CountValue
		}
		v.runs = append(v.runs, store.NewRun(rr, ground))
	}

	if len(byTool) < 2 {
		// Nothing to compare against. The lone counter's own error flag
		// decides whether the instance needs attention.
		v.problematic = v.errored
		if v.errored {
			slog.Warn("counter failed", "instance", instance)
		}
		return v
	}

	if counts.Agree(byTool) {
		v.agreement = "agree"
		slog.Info("counts agree", "instance", instance)
		if c.CleanProofs && c.ProofDir != "" && !v.errored {
			if err := verify.CleanProofs(c.ProofDir, instance); err != nil {
				slog.Warn("proof cleanup failed", "instance", instance, "error", err)
			}
		}
	} else {
		v.agreement = "disagree"
		v.problematic = true
		slog.Warn("counts disagree", "instance", instance, "counts", "\n"+counts.Table(byTool))
	}
	// A counter failure marks the instance even when the surviving
	// entries collapse to agreement, as when every counter crashes.
	if v.errored {
		v.problematic = true
	}
	for i := range v.runs {
		v.runs[i].Agreement = v.agreement
	}
	return v
}

func (c *Campaign) logEpilogue(s Summary) {
	slog.Info("campaign finished", "id", c.ID, "instances", s.Instances,
		"runs", s.Runs, "agreements", s.Agreements,
		"disagreements", s.Disagreements, "errors", s.Errors)
	if len(s.Problematic) == 0 {
		slog.Info("no problematic instances found")
		return
	}
	slog.Warn("problematic instances found",
		"count", len(s.Problematic),
		"list", ProblematicPath(c.OutDir, c.Prefix))
}
