/*
scheduler.go - Periodic overdue scan

PURPOSE:
  Periodically groups every overdue bill in the fleet, logs a one-line
  report per resident, and publishes the totals as Prometheus gauges.
  It never changes a bill: overdue is derived, so the scan is read-only.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Scans once immediately on start, then on every tick
  - "today" is taken from Now at each tick and passed explicitly to the engine

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewOverdueScheduler(handler.Reconciler, handler.Metrics)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GET /api/overdue (on-demand report)
  - billing/overdue.go: GroupOverdue
*/
package api

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/warp/billing-engine/billing"
)

// OverdueScheduler runs the overdue scan on a ticker.
type OverdueScheduler struct {
	Reconciler    *billing.Reconciler
	Metrics       *Metrics
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewOverdueScheduler creates a new scheduler.
func NewOverdueScheduler(reconciler *billing.Reconciler, metrics *Metrics) *OverdueScheduler {
	return &OverdueScheduler{
		Reconciler:    reconciler,
		Metrics:       metrics,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (sc *OverdueScheduler) Start() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.Enabled || sc.CheckInterval <= 0 {
		log.Println("[Overdue] Disabled, not starting")
		return
	}

	sc.stop = make(chan bool)
	sc.ticker = time.NewTicker(sc.CheckInterval)
	sc.wg.Add(1)

	go sc.run()

	log.Printf("[Overdue] Started with check interval: %v", sc.CheckInterval)
}

// Stop stops the scheduler.
func (sc *OverdueScheduler) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.ticker != nil {
		sc.ticker.Stop()
		close(sc.stop)
		sc.wg.Wait()
		sc.ticker = nil
		log.Println("[Overdue] Stopped")
	}
}

func (sc *OverdueScheduler) run() {
	defer sc.wg.Done()

	// Run immediately on start
	sc.Scan(context.Background())

	for {
		select {
		case <-sc.ticker.C:
			sc.Scan(context.Background())
		case <-sc.stop:
			return
		}
	}
}

// Scan groups overdue bills as of Now, logs them and updates the gauges.
func (sc *OverdueScheduler) Scan(ctx context.Context) ([]billing.OverdueGroup, error) {
	today := billing.DateOf(sc.Now().UTC())

	groups, err := sc.Reconciler.Overdue(ctx, today)
	if sc.Metrics != nil {
		sc.Metrics.ObserveOverdue(groups, err)
	}
	if err != nil {
		log.Printf("[Overdue] Scan for %s failed: %v", today, err)
		return nil, err
	}

	for _, g := range groups {
		log.Printf("[Overdue] %s owes %s over %d bill(s): units=[%s] months=[%s]",
			g.UserID, g.TotalAmountDue.StringFixed(2), g.BillsCount,
			strings.Join(g.Units, ", "), strings.Join(g.MonthsDue, ", "))
	}
	log.Printf("[Overdue] Completed for %s: %d resident(s), total %s",
		today, len(groups), billing.OverdueTotal(groups).StringFixed(2))

	return groups, nil
}
