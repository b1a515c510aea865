package serviceability

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    "shipquote/internal/courier"
)

// DefaultTimeout bounds each individual courier check.
const DefaultTimeout = 8 * time.Second

// Verdict is one courier's serviceability determination for a route.
// Verdicts are produced fresh per request and never cached; courier
// networks change availability frequently.
type Verdict struct {
    Courier     string    `json:"courier"`
    Serviceable bool      `json:"serviceable"`
    Reason      string    `json:"reason"`
    CheckTimeMs int64     `json:"check_time_ms"`
    Timestamp   time.Time `json:"timestamp"`
}

// CheckFunc queries one courier's serviceability API and returns its raw
// response payload. pickupPincode is empty for delivery-only checkers.
type CheckFunc func(ctx context.Context, pickupPincode, deliveryPincode, serviceType string) (map[string]any, error)

// Checker is one courier's serviceability collaborator. NeedsPickup
// declares the call arity: some courier APIs take only the delivery
// pincode, others require both endpoints.
type Checker struct {
    NeedsPickup bool
    Check       CheckFunc
}

// Aggregator fans a serviceability question out to every requested
// courier concurrently and collects one verdict per courier. Ambiguity,
// timeout or API error always resolve to not-serviceable.
type Aggregator struct {
    checkers map[courier.Courier]Checker
    timeout  time.Duration
}

func NewAggregator(timeout time.Duration) *Aggregator {
    if timeout <= 0 {
        timeout = DefaultTimeout
    }
    return &Aggregator{
        checkers: make(map[courier.Courier]Checker),
        timeout:  timeout,
    }
}

// Register wires a courier's checker into the aggregator. Must be called
// before CheckAll; the registry is not safe for concurrent mutation.
func (a *Aggregator) Register(c courier.Courier, ch Checker) {
    a.checkers[c] = ch
}

// CheckAll checks every named courier concurrently under the shared
// per-check timeout. It returns exactly one verdict per input name, in
// input order. A slow or failing courier never blocks the others, and a
// check that outlives its deadline has its late result discarded rather
// than flipping the timed-out verdict.
func (a *Aggregator) CheckAll(ctx context.Context, courierNames []string, pickupPincode, deliveryPincode, serviceType string) []Verdict {
    verdicts := make([]Verdict, len(courierNames))
    var wg sync.WaitGroup
    for i, name := range courierNames {
        canonical, ok := courier.Canonical(name)
        if !ok {
            verdicts[i] = unresolved(name)
            continue
        }
        checker, ok := a.checkers[canonical]
        if !ok {
            verdicts[i] = unresolved(name)
            continue
        }
        wg.Add(1)
        go func(i int, name string, checker Checker) {
            defer wg.Done()
            verdicts[i] = a.checkOne(ctx, name, checker, pickupPincode, deliveryPincode, serviceType)
        }(i, name, checker)
    }
    wg.Wait()
    return verdicts
}

func unresolved(name string) Verdict {
    return Verdict{
        Courier:     name,
        Serviceable: false,
        Reason:      "No serviceability check configured",
        Timestamp:   time.Now().UTC(),
    }
}

func (a *Aggregator) checkOne(ctx context.Context, name string, checker Checker, pickup, delivery, serviceType string) Verdict {
    start := time.Now()
    cctx, cancel := context.WithTimeout(ctx, a.timeout)
    defer cancel()

    type outcome struct {
        payload map[string]any
        err     error
    }
    // Buffered so a late responder can park its result and exit instead
    // of leaking after the deadline fires.
    done := make(chan outcome, 1)
    go func() {
        pickupArg := ""
        if checker.NeedsPickup {
            pickupArg = pickup
        }
        payload, err := checker.Check(cctx, pickupArg, delivery, serviceType)
        done <- outcome{payload: payload, err: err}
    }()

    var v Verdict
    select {
    case <-cctx.Done():
        reason := fmt.Sprintf("serviceability check timed out after %s; assuming not serviceable", a.timeout)
        if errors.Is(cctx.Err(), context.Canceled) {
            // Parent cancellation, not the per-check deadline.
            reason = "serviceability check cancelled; assuming not serviceable"
        }
        log.Printf("serviceability: %s check aborted: %v", name, cctx.Err())
        v = Verdict{
            Courier:     name,
            Serviceable: false,
            Reason:      reason,
        }
    case o := <-done:
        if o.err != nil {
            log.Printf("serviceability: %s check failed: %v", name, o.err)
            v = Verdict{
                Courier:     name,
                Serviceable: false,
                Reason:      fmt.Sprintf("serviceability check failed: %v; assuming not serviceable", o.err),
            }
        } else {
            v = normalize(name, o.payload)
        }
    }
    v.CheckTimeMs = time.Since(start).Milliseconds()
    v.Timestamp = time.Now().UTC()
    return v
}
