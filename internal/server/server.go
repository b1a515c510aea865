package server

import (
    "context"
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"

    "shipquote/internal/quote"
    "shipquote/internal/rate"
    "shipquote/internal/zone"
)

// CardStore is the rate-card administration collaborator.
type CardStore interface {
    Create(ctx context.Context, c rate.Card) (uuid.UUID, error)
    List(ctx context.Context) ([]rate.Card, error)
}

type Server struct {
    engine *quote.Engine
    cards  CardStore
}

// New wires the HTTP surface over the quote engine and card store.
func New(engine *quote.Engine, cards CardStore) http.Handler {
    s := &Server{engine: engine, cards: cards}
    r := chi.NewRouter()
    // Observability: Request ID and basic logger
    r.Use(requestIDMiddleware)
    r.Use(middleware.Logger)
    r.Get("/healthz", s.handleHealth)
    r.Post("/quotes", s.handleGetQuotes)
    r.Get("/zone", s.handleGetZone)
    r.Post("/ratecards", s.handleCreateRateCard)
    r.Get("/ratecards", s.handleListRateCards)
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

// Quotes

func (s *Server) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
    var req quote.Request
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if req.OrderType == "" {
        req.OrderType = rate.OrderTypePrepaid
    }

    res, err := s.engine.GetQuotes(r.Context(), req)
    switch {
    case err == nil:
    case errors.Is(err, quote.ErrInvalidInput), errors.Is(err, rate.ErrInvalidWeight):
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
        return
    case errors.Is(err, rate.ErrNoRateCard):
        // Not priced is an expected outcome for uncovered zones, not a fault.
        writeErrorJSON(w, http.StatusNotFound, "no_rate_card", err.Error())
        return
    default:
        log.Println("get quotes error:", err)
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "failed to compute quotes")
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(res)
}

// Zone diagnostics

type ZoneResponse struct {
    Origin      string `json:"origin"`
    Destination string `json:"destination"`
    Zone        string `json:"zone"`
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    origin := strings.TrimSpace(q.Get("origin"))
    destination := strings.TrimSpace(q.Get("destination"))
    if origin == "" || destination == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "origin and destination required")
        return
    }
    res := ZoneResponse{
        Origin:      origin,
        Destination: destination,
        Zone:        string(s.engine.Zone(origin, destination)),
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(res)
}

// Rate-card administration

type RateCardCreateRequest struct {
    Courier               string  `json:"courier"`
    ProductName           string  `json:"product_name"`
    Mode                  string  `json:"mode"`
    Zone                  string  `json:"zone"`
    BaseRate              float64 `json:"base_rate"`
    AddlRate              float64 `json:"addl_rate"`
    CODAmount             float64 `json:"cod_amount"`
    CODPercent            float64 `json:"cod_percent"`
    RTOCharges            float64 `json:"rto_charges"`
    MinimumBillableWeight float64 `json:"minimum_billable_weight"`
}

type RateCardCreateResponse struct {
    ID     string `json:"id"`
    Status string `json:"status"`
}

func (s *Server) handleCreateRateCard(w http.ResponseWriter, r *http.Request) {
    var req RateCardCreateRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if strings.TrimSpace(req.Courier) == "" || strings.TrimSpace(req.ProductName) == "" ||
        strings.TrimSpace(req.Mode) == "" || strings.TrimSpace(req.Zone) == "" {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "courier, product_name, mode and zone required")
        return
    }
    if req.BaseRate < 0 || req.AddlRate < 0 {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "rates must not be negative")
        return
    }

    id, err := s.cards.Create(r.Context(), rate.Card{
        Courier:               req.Courier,
        ProductName:           req.ProductName,
        Mode:                  req.Mode,
        Zone:                  zone.Zone(req.Zone),
        BaseRate:              req.BaseRate,
        AddlRate:              req.AddlRate,
        CODAmount:             req.CODAmount,
        CODPercent:            req.CODPercent,
        RTOCharges:            req.RTOCharges,
        MinimumBillableWeight: req.MinimumBillableWeight,
        IsActive:              true,
    })
    if err != nil {
        log.Println("create rate card error:", err)
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to create rate card")
        return
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(RateCardCreateResponse{ID: id.String(), Status: "created"})
}

func (s *Server) handleListRateCards(w http.ResponseWriter, r *http.Request) {
    cards, err := s.cards.List(r.Context())
    if err != nil {
        log.Println("list rate cards error:", err)
        writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to list rate cards")
        return
    }
    if cards == nil {
        cards = []rate.Card{}
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(cards)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}
