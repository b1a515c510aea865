package quote

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "shipquote/internal/courier"
    "shipquote/internal/rate"
    "shipquote/internal/serviceability"
    "shipquote/internal/zone"
)

// ErrInvalidInput is returned for requests rejected before any
// collaborator is called.
var ErrInvalidInput = errors.New("invalid quote request")

// CardFinder supplies the active rate-card snapshot for a zone.
type CardFinder interface {
    Find(ctx context.Context, f rate.Filter) ([]rate.Card, error)
}

// Checker answers serviceability for a set of couriers on a route.
type Checker interface {
    CheckAll(ctx context.Context, courierNames []string, pickupPincode, deliveryPincode, serviceType string) []serviceability.Verdict
}

// Engine composes the zone classifier, rate calculator and serviceability
// aggregator into one quote pipeline.
type Engine struct {
    zones  *zone.Classifier
    cards  CardFinder
    checks Checker
}

func NewEngine(zones *zone.Classifier, cards CardFinder, checks Checker) *Engine {
    return &Engine{zones: zones, cards: cards, checks: checks}
}

// Request is one quote question: a route, a parcel and payment terms.
type Request struct {
    OriginPincode        string           `json:"origin_pincode"`
    DestinationPincode   string           `json:"destination_pincode"`
    WeightKg             float64          `json:"weight_kg"`
    Dimensions           *rate.Dimensions `json:"dimensions,omitempty"`
    Mode                 string           `json:"mode,omitempty"`
    OrderType            string           `json:"order_type"`
    CODCollectableAmount float64          `json:"cod_collectable_amount,omitempty"`
    IncludeRTO           bool             `json:"include_rto,omitempty"`
    CourierUniverse      []string         `json:"courier_universe"`
}

// Response carries the serviceable priced options plus the per-courier
// verdicts for observability. An empty quote list is a valid outcome:
// no serviceable courier for the route is not a fault.
type Response struct {
    Zone             zone.Zone                `json:"zone"`
    Quotes           []rate.Quote             `json:"quotes"`
    BestOptions      []rate.Quote             `json:"best_options"`
    Verdicts         []serviceability.Verdict `json:"verdicts"`
    BilledWeight     float64                  `json:"billed_weight"`
    VolumetricWeight float64                  `json:"volumetric_weight"`
}

// GetQuotes classifies the route, prices it against every active card in
// the courier universe and checks serviceability, then keeps only the
// quotes whose courier is both priced and serviceable. Pricing and
// serviceability share no state and run concurrently.
func (e *Engine) GetQuotes(ctx context.Context, req Request) (Response, error) {
    if strings.TrimSpace(req.OriginPincode) == "" || strings.TrimSpace(req.DestinationPincode) == "" {
        return Response{}, fmt.Errorf("%w: origin and destination pincodes required", ErrInvalidInput)
    }
    if req.WeightKg <= 0 {
        return Response{}, fmt.Errorf("%w: weight must be greater than zero", ErrInvalidInput)
    }

    z := e.zones.Classify(req.OriginPincode, req.DestinationPincode)

    verdictCh := make(chan []serviceability.Verdict, 1)
    go func() {
        verdictCh <- e.checks.CheckAll(ctx, req.CourierUniverse, req.OriginPincode, req.DestinationPincode, serviceTypeFromMode(req.Mode))
    }()

    result, calcErr := e.price(ctx, z, req)

    // Join the serviceability branch even when pricing failed; the
    // goroutine must not outlive the request.
    verdicts := <-verdictCh
    if calcErr != nil {
        return Response{Zone: z, Verdicts: verdicts}, calcErr
    }

    serviceable := make(map[string]bool, len(verdicts))
    for _, v := range verdicts {
        if v.Serviceable {
            serviceable[canonicalName(v.Courier)] = true
        }
    }

    return Response{
        Zone:             z,
        Quotes:           filterServiceable(result.Quotes, serviceable),
        BestOptions:      filterServiceable(result.BestOptions, serviceable),
        Verdicts:         verdicts,
        BilledWeight:     result.BilledWeight,
        VolumetricWeight: result.VolumetricWeight,
    }, nil
}

// Zone exposes route classification for diagnostics tooling.
func (e *Engine) Zone(originPincode, destinationPincode string) zone.Zone {
    return e.zones.Classify(originPincode, destinationPincode)
}

func (e *Engine) price(ctx context.Context, z zone.Zone, req Request) (rate.Result, error) {
    cards, err := e.cards.Find(ctx, rate.Filter{Zone: z, Couriers: req.CourierUniverse, Mode: req.Mode})
    if err != nil {
        return rate.Result{}, fmt.Errorf("load rate cards: %w", err)
    }
    return rate.Calculate(rate.Input{
        Zone:                 z,
        WeightKg:             req.WeightKg,
        Dimensions:           req.Dimensions,
        Mode:                 req.Mode,
        Couriers:             req.CourierUniverse,
        OrderType:            req.OrderType,
        CODCollectableAmount: req.CODCollectableAmount,
        IncludeRTO:           req.IncludeRTO,
        Cards:                cards,
    })
}

// filterServiceable keeps quotes whose courier has a serviceable verdict,
// matching identity across naming variants. Order is preserved.
func filterServiceable(quotes []rate.Quote, serviceable map[string]bool) []rate.Quote {
    out := make([]rate.Quote, 0, len(quotes))
    for _, q := range quotes {
        if serviceable[canonicalName(q.Courier)] {
            out = append(out, q)
        }
    }
    return out
}

func canonicalName(name string) string {
    if c, ok := courier.Canonical(name); ok {
        return string(c)
    }
    return strings.ToLower(strings.TrimSpace(name))
}

// serviceTypeFromMode maps the shipping mode onto the service type the
// courier APIs expect. Surface is the default when no mode is given.
func serviceTypeFromMode(mode string) string {
    m := strings.ToLower(strings.TrimSpace(mode))
    if m == "" {
        return "surface"
    }
    return m
}
