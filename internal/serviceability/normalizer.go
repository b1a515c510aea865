package serviceability

import "strings"

// Courier serviceability APIs do not share a response shape: some return a
// flat serviceable boolean, some nest it under the destination, some wrap
// it in a success envelope. normalize maps all of them onto a uniform
// Verdict, resolving anything ambiguous to not-serviceable.

// normalize converts a raw courier response payload into a Verdict.
// A payload without an explicit serviceable field is not-serviceable.
func normalize(name string, payload map[string]any) Verdict {
    if payload == nil {
        return Verdict{
            Courier:     name,
            Serviceable: false,
            Reason:      "unable to determine serviceability from API response",
        }
    }

    // A failed success envelope means the API call itself did not succeed,
    // regardless of any serviceable field next to it.
    if success, ok := getBool(payload, []string{"success", "status.success"}); ok && !success {
        reason := getString(payload, []string{"error", "message", "status.message"})
        if reason == "" {
            reason = "courier API reported failure"
        }
        return Verdict{Courier: name, Serviceable: false, Reason: reason + "; assuming not serviceable"}
    }

    serviceable, ok := getBool(payload, []string{
        "serviceable",
        "destination.serviceable",
        "data.serviceable",
        "result.serviceable",
    })
    if !ok {
        return Verdict{
            Courier:     name,
            Serviceable: false,
            Reason:      "unable to determine serviceability from API response",
        }
    }

    reason := getString(payload, []string{"message", "reason", "destination.message", "data.message"})
    if reason == "" {
        if serviceable {
            reason = "route serviceable"
        } else {
            reason = "courier reported route not serviceable"
        }
    }
    return Verdict{Courier: name, Serviceable: serviceable, Reason: reason}
}

// getBool returns the first boolean found at the candidate keys.
// Supports dot-path navigation for nested maps.
func getBool(m map[string]any, keys []string) (bool, bool) {
    for _, k := range keys {
        if v := getPath(m, k); v != nil {
            if b, ok := v.(bool); ok {
                return b, true
            }
        }
    }
    return false, false
}

// getString returns the first non-empty string from the candidate keys.
func getString(m map[string]any, keys []string) string {
    for _, k := range keys {
        if v := getPath(m, k); v != nil {
            if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
                return s
            }
        }
    }
    return ""
}

// getPath navigates a dot-separated key into nested maps.
func getPath(m map[string]any, path string) any {
    parts := strings.Split(path, ".")
    var cur any = m
    for _, p := range parts {
        mm, ok := cur.(map[string]any)
        if !ok {
            return nil
        }
        v, ok := mm[p]
        if !ok {
            return nil
        }
        cur = v
    }
    return cur
}
