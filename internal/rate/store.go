package rate

import (
    "context"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "shipquote/internal/courier"
    "shipquote/internal/zone"
)

// Store persists rate cards in postgres.
//
// Expected schema:
//
//  CREATE TABLE rate_cards (
//      id uuid PRIMARY KEY,
//      courier text NOT NULL,
//      product_name text NOT NULL,
//      mode text NOT NULL,
//      zone text NOT NULL,
//      base_rate numeric NOT NULL,
//      addl_rate numeric NOT NULL,
//      cod_amount numeric NOT NULL DEFAULT 0,
//      cod_percent numeric NOT NULL DEFAULT 0,
//      rto_charges numeric NOT NULL DEFAULT 0,
//      min_billable_weight numeric NOT NULL DEFAULT 0.5,
//      is_active boolean NOT NULL DEFAULT true,
//      created_at timestamptz NOT NULL,
//      updated_at timestamptz NOT NULL
//  );
type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

// Filter narrows a Find to a zone and optionally couriers and mode.
type Filter struct {
    Zone     zone.Zone
    Couriers []string
    Mode     string
}

const cardColumns = `id, courier, product_name, mode, zone, base_rate, addl_rate,
       cod_amount, cod_percent, rto_charges, min_billable_weight, is_active`

// Find returns active cards matching the filter, ordered by courier then
// base rate so output is deterministic across runs. The courier filter is
// applied in memory: stored spellings and request spellings may be naming
// variants of the same courier, which SQL string equality cannot match.
func (s *Store) Find(ctx context.Context, f Filter) ([]Card, error) {
    q := `SELECT ` + cardColumns + ` FROM rate_cards WHERE is_active AND zone = $1`
    args := []any{string(f.Zone)}
    if f.Mode != "" {
        args = append(args, f.Mode)
        q += fmt.Sprintf(" AND lower(mode) = lower($%d)", len(args))
    }
    q += " ORDER BY courier, base_rate"

    rows, err := s.db.Query(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("find rate cards: %w", err)
    }
    defer rows.Close()
    cards, err := scanCards(rows)
    if err != nil {
        return nil, err
    }
    return filterCouriers(cards, f.Couriers), nil
}

// filterCouriers keeps cards whose courier matches any of the requested
// names, tolerating case and alias variants. Order is preserved.
func filterCouriers(cards []Card, names []string) []Card {
    if len(names) == 0 {
        return cards
    }
    out := make([]Card, 0, len(cards))
    for _, c := range cards {
        for _, n := range names {
            if courier.Same(c.Courier, n) {
                out = append(out, c)
                break
            }
        }
    }
    return out
}

// List returns every card, active or not, for administration.
func (s *Store) List(ctx context.Context) ([]Card, error) {
    rows, err := s.db.Query(ctx, `SELECT `+cardColumns+` FROM rate_cards ORDER BY courier, zone, mode, base_rate`)
    if err != nil {
        return nil, fmt.Errorf("list rate cards: %w", err)
    }
    defer rows.Close()
    return scanCards(rows)
}

// Create inserts a new active card, deactivating any prior active card for
// the same (courier, product, mode, zone) tuple. Old cards are superseded,
// never deleted.
func (s *Store) Create(ctx context.Context, c Card) (uuid.UUID, error) {
    tx, err := s.db.Begin(ctx)
    if err != nil {
        return uuid.Nil, err
    }
    defer func() { _ = tx.Rollback(ctx) }()

    now := time.Now().UTC()
    _, err = tx.Exec(ctx, `
        UPDATE rate_cards SET is_active = false, updated_at = $5
        WHERE is_active AND courier = $1 AND product_name = $2 AND mode = $3 AND zone = $4
    `, c.Courier, c.ProductName, c.Mode, string(c.Zone), now)
    if err != nil {
        return uuid.Nil, fmt.Errorf("deactivate superseded cards: %w", err)
    }

    id := uuid.New()
    _, err = tx.Exec(ctx, `
        INSERT INTO rate_cards (
            id, courier, product_name, mode, zone, base_rate, addl_rate,
            cod_amount, cod_percent, rto_charges, min_billable_weight, is_active,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12, $12)
    `,
        id, c.Courier, c.ProductName, c.Mode, string(c.Zone), c.BaseRate, c.AddlRate,
        c.CODAmount, c.CODPercent, c.RTOCharges, c.MinimumBillableWeight, now,
    )
    if err != nil {
        return uuid.Nil, fmt.Errorf("insert rate card: %w", err)
    }
    if err := tx.Commit(ctx); err != nil {
        return uuid.Nil, err
    }
    return id, nil
}

func scanCards(rows pgx.Rows) ([]Card, error) {
    var cards []Card
    for rows.Next() {
        var c Card
        var z string
        err := rows.Scan(&c.ID, &c.Courier, &c.ProductName, &c.Mode, &z, &c.BaseRate, &c.AddlRate,
            &c.CODAmount, &c.CODPercent, &c.RTOCharges, &c.MinimumBillableWeight, &c.IsActive)
        if err != nil {
            return nil, err
        }
        c.Zone = zone.Zone(z)
        cards = append(cards, c)
    }
    return cards, rows.Err()
}
