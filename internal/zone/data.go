package zone

import (
    _ "embed"
    "encoding/json"
    "fmt"
    "os"
)

// The pincode table is a versioned data asset, not logic. The embedded copy
// ships with the binary; deployments can override it with a newer file.

//go:embed data/pincode_zones.json
var embeddedData []byte

type dataFile struct {
    Prefixes map[string]Info   `json:"prefixes"`
    Regions  map[string]Region `json:"regions"`
}

// New builds a Classifier from the embedded pincode table.
func New() *Classifier {
    c, err := parse(embeddedData)
    if err != nil {
        // The embedded asset is validated by tests; failing to parse it
        // is a build defect, not a runtime condition.
        panic(fmt.Sprintf("zone: embedded data invalid: %v", err))
    }
    return c
}

// NewFromFile builds a Classifier from an external data file.
func NewFromFile(path string) (*Classifier, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("read zone data: %w", err)
    }
    c, err := parse(b)
    if err != nil {
        return nil, fmt.Errorf("parse zone data %s: %w", path, err)
    }
    return c, nil
}

func parse(b []byte) (*Classifier, error) {
    var df dataFile
    if err := json.Unmarshal(b, &df); err != nil {
        return nil, err
    }
    if len(df.Prefixes) == 0 {
        return nil, fmt.Errorf("no pincode prefixes defined")
    }
    if len(df.Regions) == 0 {
        return nil, fmt.Errorf("no state regions defined")
    }
    return &Classifier{prefixes: df.Prefixes, regions: df.Regions}, nil
}
