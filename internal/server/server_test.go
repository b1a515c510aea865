package server

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/google/uuid"

    "shipquote/internal/courier"
    "shipquote/internal/quote"
    "shipquote/internal/rate"
    "shipquote/internal/serviceability"
    "shipquote/internal/zone"
)

// --- test fixtures ---

type memCards struct {
    cards []rate.Card
    err   error
}

func (m *memCards) Find(ctx context.Context, f rate.Filter) ([]rate.Card, error) {
    if m.err != nil {
        return nil, m.err
    }
    var out []rate.Card
    for _, c := range m.cards {
        if c.IsActive && c.Zone == f.Zone {
            out = append(out, c)
        }
    }
    return out, nil
}

func (m *memCards) Create(ctx context.Context, c rate.Card) (uuid.UUID, error) {
    if m.err != nil {
        return uuid.Nil, m.err
    }
    c.ID = uuid.New()
    for i := range m.cards {
        prev := &m.cards[i]
        if prev.IsActive && prev.Courier == c.Courier && prev.ProductName == c.ProductName &&
            prev.Mode == c.Mode && prev.Zone == c.Zone {
            prev.IsActive = false
        }
    }
    m.cards = append(m.cards, c)
    return c.ID, nil
}

func (m *memCards) List(ctx context.Context) ([]rate.Card, error) {
    return m.cards, m.err
}

func newTestHandler(cards *memCards, serviceable map[string]bool) http.Handler {
    agg := serviceability.NewAggregator(time.Second)
    for name, ok := range serviceable {
        c, found := courier.Canonical(name)
        if !found {
            continue
        }
        ok := ok
        agg.Register(c, serviceability.Checker{
            Check: func(ctx context.Context, pickup, delivery, serviceType string) (map[string]any, error) {
                return map[string]any{"serviceable": ok}, nil
            },
        })
    }
    engine := quote.NewEngine(zone.New(), cards, agg)
    return New(engine, cards)
}

func activeCard(name string, base float64) rate.Card {
    return rate.Card{
        ID: uuid.New(), Courier: name, ProductName: "Standard", Mode: "Surface",
        Zone: zone.WithinCity, BaseRate: base, AddlRate: 10, IsActive: true,
    }
}

// helper to parse standardized error
type stdError struct {
    Error struct {
        Code    string `json:"code"`
        Message string `json:"message"`
    } `json:"error"`
}

func TestHealthz(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if body := rr.Body.String(); body != "ok" {
        t.Fatalf("expected body 'ok', got %q", body)
    }
}

func TestRequestIDHeaderPresent(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rid := rr.Header().Get("X-Request-ID"); rid == "" {
        t.Fatalf("expected X-Request-ID header to be set")
    }
}

func TestGetZone(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    req := httptest.NewRequest(http.MethodGet, "/zone?origin=110001&destination=110030", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var res ZoneResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
        t.Fatalf("failed to unmarshal: %v", err)
    }
    if res.Zone != "Within City" {
        t.Fatalf("expected Within City, got %q", res.Zone)
    }
}

func TestGetZone_MissingParams_ErrorJSON(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    req := httptest.NewRequest(http.MethodGet, "/zone?origin=110001", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestPostQuotes(t *testing.T) {
    cards := &memCards{cards: []rate.Card{activeCard("Delhivery", 40), activeCard("Ekart", 35)}}
    h := newTestHandler(cards, map[string]bool{"Delhivery": true, "Ekart": false})

    payload := map[string]any{
        "origin_pincode":      "110001",
        "destination_pincode": "110030",
        "weight_kg":           0.6,
        "order_type":          "prepaid",
        "courier_universe":    []string{"Delhivery", "Ekart"},
    }
    body, _ := json.Marshal(payload)
    req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var res quote.Response
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
        t.Fatalf("failed to unmarshal: %v", err)
    }
    if res.Zone != zone.WithinCity {
        t.Fatalf("expected Within City, got %s", res.Zone)
    }
    // Ekart is cheaper but not serviceable.
    if len(res.Quotes) != 1 || res.Quotes[0].Courier != "Delhivery" {
        t.Fatalf("expected only Delhivery, got %+v", res.Quotes)
    }
    // 0.6kg -> multiplier 2 -> 40+10=50, gst 9, total 59
    if res.Quotes[0].Total != 59.00 {
        t.Fatalf("expected total 59.00, got %v", res.Quotes[0].Total)
    }
    if len(res.Verdicts) != 2 {
        t.Fatalf("expected 2 verdicts, got %d", len(res.Verdicts))
    }
}

func TestPostQuotes_InvalidWeight_ErrorJSON(t *testing.T) {
    h := newTestHandler(&memCards{cards: []rate.Card{activeCard("Delhivery", 40)}}, map[string]bool{"Delhivery": true})
    body := []byte(`{"origin_pincode":"110001","destination_pincode":"110030","weight_kg":0,"courier_universe":["Delhivery"]}`)
    req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestPostQuotes_NoRateCard_ErrorJSON(t *testing.T) {
    h := newTestHandler(&memCards{}, map[string]bool{"Delhivery": true})
    body := []byte(`{"origin_pincode":"110001","destination_pincode":"110030","weight_kg":1,"courier_universe":["Delhivery"]}`)
    req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "no_rate_card" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}

func TestPostQuotes_InvalidJSON_ErrorJSON(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    req := httptest.NewRequest(http.MethodPost, "/quotes", bytes.NewReader([]byte("{not json")))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rr.Code)
    }
}

func TestCreateAndListRateCards(t *testing.T) {
    cards := &memCards{}
    h := newTestHandler(cards, nil)

    payload := map[string]any{
        "courier":      "Delhivery",
        "product_name": "Standard",
        "mode":         "Surface",
        "zone":         "Within City",
        "base_rate":    40,
        "addl_rate":    10,
    }
    body, _ := json.Marshal(payload)
    req := httptest.NewRequest(http.MethodPost, "/ratecards", bytes.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var res RateCardCreateResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
        t.Fatalf("failed to unmarshal: %v", err)
    }
    if res.ID == "" || res.Status != "created" {
        t.Fatalf("unexpected response: %+v", res)
    }

    // Creating again supersedes the first card.
    req = httptest.NewRequest(http.MethodPost, "/ratecards", bytes.NewReader(body))
    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }

    req = httptest.NewRequest(http.MethodGet, "/ratecards", nil)
    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    var listed []rate.Card
    if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
        t.Fatalf("failed to unmarshal: %v", err)
    }
    if len(listed) != 2 {
        t.Fatalf("expected 2 cards, got %d", len(listed))
    }
    active := 0
    for _, c := range listed {
        if c.IsActive {
            active++
        }
    }
    if active != 1 {
        t.Fatalf("expected exactly 1 active card for the tuple, got %d", active)
    }
}

func TestCreateRateCard_MissingFields_ErrorJSON(t *testing.T) {
    h := newTestHandler(&memCards{}, nil)
    body := []byte(`{"courier":"Delhivery"}`)
    req := httptest.NewRequest(http.MethodPost, "/ratecards", bytes.NewReader(body))
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d; body=%s", rr.Code, rr.Body.String())
    }
    var e stdError
    if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
        t.Fatalf("unmarshal error: %v", err)
    }
    if e.Error.Code != "invalid_request" {
        t.Fatalf("unexpected error code: %s", e.Error.Code)
    }
}
