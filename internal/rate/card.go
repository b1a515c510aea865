package rate

import (
    "github.com/google/uuid"

    "shipquote/internal/zone"
)

// Card is one tariff row: the price a courier charges for one
// (product, mode, zone) combination. Cards are uniquely identified by
// (courier, product, mode, zone); superseded cards are deactivated,
// never deleted.
type Card struct {
    ID                    uuid.UUID `json:"id"`
    Courier               string    `json:"courier"`
    ProductName           string    `json:"product_name"`
    Mode                  string    `json:"mode"`
    Zone                  zone.Zone `json:"zone"`
    BaseRate              float64   `json:"base_rate"`
    AddlRate              float64   `json:"addl_rate"`
    CODAmount             float64   `json:"cod_amount"`
    CODPercent            float64   `json:"cod_percent"`
    RTOCharges            float64   `json:"rto_charges"`
    MinimumBillableWeight float64   `json:"minimum_billable_weight"`
    IsActive              bool      `json:"is_active"`
}
