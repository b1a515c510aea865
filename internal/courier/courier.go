package courier

import "strings"

// Courier is the canonical identity of a shipping partner. Rate cards,
// serviceability checks and quote filtering all key on this value so that
// naming variants coming from different systems cannot silently diverge.
type Courier string

const (
    Delhivery   Courier = "Delhivery"
    Ekart       Courier = "Ekart"
    BlueDart    Courier = "BlueDart"
    DTDC        Courier = "DTDC"
    XpressBees  Courier = "XpressBees"
    EcomExpress Courier = "Ecom Express"
)

// All lists every known courier in a stable order.
func All() []Courier {
    return []Courier{Delhivery, Ekart, BlueDart, DTDC, XpressBees, EcomExpress}
}

// aliases maps normalized name variants onto canonical couriers.
// Keys are lowercase with spaces, hyphens, underscores and dots stripped.
var aliases = map[string]Courier{
    "delhivery":          Delhivery,
    "delhiverysurface":   Delhivery,
    "delhiveryair":       Delhivery,
    "ekart":              Ekart,
    "ekartlogistics":     Ekart,
    "flipkartekart":      Ekart,
    "bluedart":           BlueDart,
    "bluedartexpress":    BlueDart,
    "dtdc":               DTDC,
    "dtdccourier":        DTDC,
    "xpressbees":         XpressBees,
    "xpressbee":          XpressBees,
    "xbees":              XpressBees,
    "ecomexpress":        EcomExpress,
    "ecom":               EcomExpress,
    "ecomexpresspvtltd":  EcomExpress,
}

func normalize(name string) string {
    var b strings.Builder
    for _, r := range strings.ToLower(strings.TrimSpace(name)) {
        switch r {
        case ' ', '-', '_', '.':
            continue
        }
        b.WriteRune(r)
    }
    return b.String()
}

// Canonical resolves a free-form courier name to its canonical identity.
// It tolerates case and internal punctuation ("Ekart Logistics", "EKART",
// "eKart" all resolve to Ekart). The second return is false when the name
// matches no known courier.
func Canonical(name string) (Courier, bool) {
    c, ok := aliases[normalize(name)]
    return c, ok
}

// Same reports whether two free-form names refer to the same courier.
// Unresolvable names only match by exact normalized equality.
func Same(a, b string) bool {
    ca, oka := Canonical(a)
    cb, okb := Canonical(b)
    if oka && okb {
        return ca == cb
    }
    return normalize(a) == normalize(b)
}
