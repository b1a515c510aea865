package rate

import (
    "testing"

    "github.com/google/uuid"

    "shipquote/internal/zone"
)

func storedCard(name string) Card {
    return Card{
        ID: uuid.New(), Courier: name, ProductName: "Standard", Mode: "Surface",
        Zone: zone.WithinCity, BaseRate: 40, AddlRate: 10, IsActive: true,
    }
}

func TestFilterCouriersAliasTolerant(t *testing.T) {
    cards := []Card{storedCard("Ekart"), storedCard("Delhivery"), storedCard("BlueDart")}

    // Variant spellings in the request must still match the stored rows.
    out := filterCouriers(cards, []string{"EKART", "Blue-Dart"})
    if len(out) != 2 {
        t.Fatalf("expected 2 cards, got %d: %+v", len(out), out)
    }
    if out[0].Courier != "Ekart" || out[1].Courier != "BlueDart" {
        t.Fatalf("unexpected cards: %+v", out)
    }

    // Variant spellings in the stored rows must match a canonical request.
    stored := []Card{storedCard("Ekart Logistics")}
    out = filterCouriers(stored, []string{"Ekart"})
    if len(out) != 1 {
        t.Fatalf("expected stored alias spelling to match, got %+v", out)
    }
}

func TestFilterCouriersEmptyFilterKeepsAll(t *testing.T) {
    cards := []Card{storedCard("Ekart"), storedCard("Delhivery")}
    out := filterCouriers(cards, nil)
    if len(out) != len(cards) {
        t.Fatalf("expected all cards, got %d", len(out))
    }
}

func TestFilterCouriersUnknownName(t *testing.T) {
    cards := []Card{storedCard("Ekart")}
    if out := filterCouriers(cards, []string{"FedEx"}); len(out) != 0 {
        t.Fatalf("expected no cards for unknown courier, got %+v", out)
    }
}
