package zone

import (
    "strings"
)

// Zone is the tariff category assigned to an origin/destination pair.
type Zone string

const (
    WithinCity   Zone = "Within City"
    WithinState  Zone = "Within State"
    SpecialZone  Zone = "Special Zone"
    MetroToMetro Zone = "Metro to Metro"
    WithinRegion Zone = "Within Region"
    RestOfIndia  Zone = "Rest of India"
)

// Region is a coarse geographic grouping of states.
type Region string

const (
    North     Region = "North"
    West      Region = "West"
    South     Region = "South"
    East      Region = "East"
    Central   Region = "Central"
    Northeast Region = "Northeast"
    Islands   Region = "Islands"
)

// Info describes the location behind a pincode prefix.
type Info struct {
    City    string `json:"city"`
    State   string `json:"state"`
    Metro   bool   `json:"metro,omitempty"`
    Special bool   `json:"special,omitempty"`
}

// unknown is the fallback record for prefixes the table does not cover.
// Unknown endpoints always classify to the most conservative zone.
var unknown = Info{City: "Unknown", State: "Unknown"}

// metroCorridors whitelists the high-connectivity region pairs that still
// count as Metro to Metro when the two metros sit in different regions.
// Fixed policy table; pairs are stored in both directions.
var metroCorridors = map[[2]Region]bool{}

func init() {
    pairs := [][2]Region{
        {North, West},
        {North, South},
        {West, South},
        {East, Central},
        {North, Central},
        {East, North},
    }
    for _, p := range pairs {
        metroCorridors[p] = true
        metroCorridors[[2]Region{p[1], p[0]}] = true
    }
}

// Classifier maps pincode pairs to tariff zones using a static
// prefix lookup table and a state-to-region table.
type Classifier struct {
    prefixes map[string]Info
    regions  map[string]Region
}

// Lookup resolves a pincode to its location info via the 3-digit prefix.
// Malformed or unknown pincodes degrade to the Unknown record.
func (c *Classifier) Lookup(pincode string) Info {
    p := strings.TrimSpace(pincode)
    if len(p) < 3 {
        return unknown
    }
    info, ok := c.prefixes[p[:3]]
    if !ok {
        return unknown
    }
    return info
}

// RegionOf returns the region for a state, or "" when the state is unknown.
func (c *Classifier) RegionOf(state string) Region {
    return c.regions[state]
}

// Classify assigns a tariff zone to an origin/destination pincode pair.
// The policy is ordered and first match wins:
//
//  1. same known city            -> Within City
//  2. same known state           -> Within State
//  3. either endpoint special    -> Special Zone
//  4. both metro, same region or whitelisted corridor -> Metro to Metro
//  5. same region                -> Within Region
//  6. otherwise                  -> Rest of India
//
// Classify never fails; unknown inputs fall through to Rest of India.
func (c *Classifier) Classify(originPincode, destinationPincode string) Zone {
    origin := c.Lookup(originPincode)
    dest := c.Lookup(destinationPincode)

    if origin.City != "Unknown" && origin.City == dest.City {
        return WithinCity
    }
    if origin.State != "Unknown" && origin.State == dest.State {
        return WithinState
    }
    if origin.Special || dest.Special {
        return SpecialZone
    }

    originRegion := c.RegionOf(origin.State)
    destRegion := c.RegionOf(dest.State)

    if origin.Metro && dest.Metro {
        if originRegion != "" && originRegion == destRegion {
            return MetroToMetro
        }
        if metroCorridors[[2]Region{originRegion, destRegion}] {
            return MetroToMetro
        }
        // Metros outside the corridor whitelist fall through.
    }
    if originRegion != "" && originRegion == destRegion {
        return WithinRegion
    }
    return RestOfIndia
}
