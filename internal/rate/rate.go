package rate

import (
    "errors"
    "log"
    "math"
    "sort"
    "strings"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "shipquote/internal/courier"
    "shipquote/internal/zone"
)

// OrderType values accepted by Calculate.
const (
    OrderTypeCOD     = "cod"
    OrderTypePrepaid = "prepaid"
)

const (
    gstRate          = 0.18
    bracketKg        = 0.5
    defaultMinWeight = 0.5
    volumetricDenom  = 5000.0
)

var (
    // ErrInvalidWeight is returned for zero or negative weights.
    ErrInvalidWeight = errors.New("weight must be greater than zero")
    // ErrNoRateCard is returned when no active card matches the request.
    ErrNoRateCard = errors.New("no active rate card for the requested zone")
)

// Dimensions are package dimensions in centimeters.
type Dimensions struct {
    Length float64 `json:"length"`
    Width  float64 `json:"width"`
    Height float64 `json:"height"`
}

// Input carries everything Calculate needs. Cards is a read-only snapshot;
// Calculate never mutates it.
type Input struct {
    Zone                 zone.Zone
    WeightKg             float64
    Dimensions           *Dimensions
    Mode                 string   // optional filter, e.g. "Surface" or "Air"
    Couriers             []string // optional courier filter (free-form names)
    OrderType            string   // "cod" or "prepaid"
    CODCollectableAmount float64
    IncludeRTO           bool
    Cards                []Card
}

// Quote is one priced shipping option. All monetary fields are rounded to
// two decimals; the caller can render a line-item breakdown without
// recomputation.
type Quote struct {
    Courier          string    `json:"courier"`
    ProductName      string    `json:"product_name"`
    Mode             string    `json:"mode"`
    Zone             zone.Zone `json:"zone"`
    VolumetricWeight float64   `json:"volumetric_weight"`
    FinalWeight      float64   `json:"final_weight"`
    WeightMultiplier int       `json:"weight_multiplier"`
    ShippingCost     float64   `json:"shipping_cost"`
    CODCharges       float64   `json:"cod_charges"`
    RTOCharges       float64   `json:"rto_charges"`
    GST              float64   `json:"gst"`
    Total            float64   `json:"total"`
    RateCardID       uuid.UUID `json:"rate_card_id"`
}

// Result is the calculator output: quotes sorted ascending by total and
// deduplicated per (courier, mode), plus the cheapest option per courier.
type Result struct {
    Quotes           []Quote `json:"quotes"`
    BestOptions      []Quote `json:"best_options"`
    BilledWeight     float64 `json:"billed_weight"`
    VolumetricWeight float64 `json:"volumetric_weight"`
}

// round2 rounds a monetary value to two decimals. Rounding happens only at
// the quote boundary; intermediate math stays unrounded.
func round2(v float64) float64 {
    f, _ := decimal.NewFromFloat(v).Round(2).Float64()
    return f
}

// Calculate prices a shipment against every matching candidate card.
//
// The formula per card: billed weight is the greater of actual and
// volumetric weight, floored by the card's minimum billable weight; the
// shipment is billed in half-kg brackets (base rate covers the first
// bracket, the additional rate each one after); COD takes the larger of
// the fixed fee and the percentage fee; GST is 18% on top of everything.
func Calculate(in Input) (Result, error) {
    if in.WeightKg <= 0 {
        return Result{}, ErrInvalidWeight
    }

    volumetric := 0.0
    if d := in.Dimensions; d != nil && d.Length > 0 && d.Width > 0 && d.Height > 0 {
        volumetric = d.Length * d.Width * d.Height / volumetricDenom
    }
    billed := math.Max(in.WeightKg, volumetric)

    var quotes []Quote
    for _, card := range in.Cards {
        if !matches(card, in) {
            continue
        }
        q, err := price(card, in, billed, volumetric)
        if err != nil {
            // One bad card must not sink the rest of the candidates.
            log.Printf("rate: skipping card %s (%s/%s/%s): %v", card.ID, card.Courier, card.ProductName, card.Mode, err)
            continue
        }
        quotes = append(quotes, q)
    }
    if len(quotes) == 0 {
        return Result{}, ErrNoRateCard
    }

    sort.Slice(quotes, func(i, j int) bool {
        if quotes[i].Total != quotes[j].Total {
            return quotes[i].Total < quotes[j].Total
        }
        if quotes[i].Courier != quotes[j].Courier {
            return quotes[i].Courier < quotes[j].Courier
        }
        return quotes[i].Mode < quotes[j].Mode
    })

    quotes = dedupe(quotes)

    return Result{
        Quotes:           quotes,
        BestOptions:      bestPerCourier(quotes),
        BilledWeight:     billed,
        VolumetricWeight: volumetric,
    }, nil
}

func matches(card Card, in Input) bool {
    if !card.IsActive || card.Zone != in.Zone {
        return false
    }
    if in.Mode != "" && !strings.EqualFold(card.Mode, in.Mode) {
        return false
    }
    if len(in.Couriers) == 0 {
        return true
    }
    for _, c := range in.Couriers {
        if courier.Same(card.Courier, c) {
            return true
        }
    }
    return false
}

func price(card Card, in Input, billed, volumetric float64) (Quote, error) {
    if card.BaseRate < 0 || card.AddlRate < 0 {
        return Quote{}, errors.New("negative rate on card")
    }

    minWeight := card.MinimumBillableWeight
    if minWeight <= 0 {
        minWeight = defaultMinWeight
    }
    finalWeight := math.Max(billed, minWeight)
    multiplier := int(math.Ceil(finalWeight / bracketKg))
    if multiplier < 1 {
        multiplier = 1
    }

    shippingCost := card.BaseRate + card.AddlRate*float64(multiplier-1)

    rtoCharges := 0.0
    if in.IncludeRTO {
        rtoCharges = card.RTOCharges * float64(multiplier)
    }

    codCharges := 0.0
    if strings.EqualFold(in.OrderType, OrderTypeCOD) {
        fixed := card.CODAmount
        percent := card.CODPercent * in.CODCollectableAmount / 100
        codCharges = math.Max(fixed, percent)
        if card.CODAmount == 0 && card.CODPercent == 0 {
            // Data-quality gap: a COD order priced against a card with no
            // COD configuration ships with a zero COD component.
            log.Printf("rate: card %s (%s/%s) has no COD configuration; COD charge defaults to 0", card.ID, card.Courier, card.ProductName)
        }
    }

    shippingCost = round2(shippingCost)
    rtoCharges = round2(rtoCharges)
    codCharges = round2(codCharges)
    gst := round2(gstRate * (shippingCost + rtoCharges + codCharges))
    total := round2(shippingCost + rtoCharges + codCharges + gst)

    return Quote{
        Courier:          card.Courier,
        ProductName:      card.ProductName,
        Mode:             card.Mode,
        Zone:             card.Zone,
        VolumetricWeight: volumetric,
        FinalWeight:      finalWeight,
        WeightMultiplier: multiplier,
        ShippingCost:     shippingCost,
        CODCharges:       codCharges,
        RTOCharges:       rtoCharges,
        GST:              gst,
        Total:            total,
        RateCardID:       card.ID,
    }, nil
}

// dedupe keeps the cheapest quote per (courier, mode). A courier may carry
// multiple matching product rows; only the cheapest surfaces. Input must
// already be sorted ascending by total.
func dedupe(sorted []Quote) []Quote {
    type key struct {
        name string
        mode string
    }
    seen := make(map[key]bool, len(sorted))
    out := sorted[:0:0]
    for _, q := range sorted {
        k := key{name: canonicalName(q.Courier), mode: strings.ToLower(q.Mode)}
        if seen[k] {
            continue
        }
        seen[k] = true
        out = append(out, q)
    }
    return out
}

// bestPerCourier picks the cheapest quote per courier across modes,
// preserving the ascending order of the input.
func bestPerCourier(sorted []Quote) []Quote {
    seen := make(map[string]bool, len(sorted))
    var out []Quote
    for _, q := range sorted {
        name := canonicalName(q.Courier)
        if seen[name] {
            continue
        }
        seen[name] = true
        out = append(out, q)
    }
    return out
}

func canonicalName(name string) string {
    if c, ok := courier.Canonical(name); ok {
        return string(c)
    }
    return strings.ToLower(strings.TrimSpace(name))
}
