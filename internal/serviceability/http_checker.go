package serviceability

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
)

// HTTPChecker adapts a courier's serviceability endpoint into a Checker.
// It posts the pincodes as JSON and hands the raw decoded response to the
// normalizer; courier-specific transport quirks live behind the endpoint,
// not here.
func HTTPChecker(client *http.Client, url string, needsPickup bool) Checker {
    if client == nil {
        client = http.DefaultClient
    }
    return Checker{
        NeedsPickup: needsPickup,
        Check: func(ctx context.Context, pickupPincode, deliveryPincode, serviceType string) (map[string]any, error) {
            body := map[string]string{
                "delivery_pincode": deliveryPincode,
                "service_type":     serviceType,
            }
            if needsPickup {
                body["pickup_pincode"] = pickupPincode
            }
            b, err := json.Marshal(body)
            if err != nil {
                return nil, err
            }
            req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
            if err != nil {
                return nil, err
            }
            req.Header.Set("Content-Type", "application/json")

            resp, err := client.Do(req)
            if err != nil {
                return nil, err
            }
            defer resp.Body.Close()
            if resp.StatusCode < 200 || resp.StatusCode >= 300 {
                return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
            }
            var payload map[string]any
            if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
                return nil, fmt.Errorf("decode response: %w", err)
            }
            return payload, nil
        },
    }
}
