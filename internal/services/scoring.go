package services

// ScoringVersion tags newly written payloads. Version 3 redefined the
// "availability" criterion: under versions 1 and 2 the legacy "gap" field
// ran in the opposite direction (1 = available, 3 = missing).
const ScoringVersion = 3

// NormalizeAvailability converts a raw availability (or legacy gap) value to
// the current scale. Non-integers and 0 map to 0; payloads older than
// version 3 have 1..3 inverted (4 - v). Payloads without a scoring_version
// are treated as version 0, so the inversion applies.
func NormalizeAvailability(raw any, version int) int {
	v := ToScore(raw)
	if v == 0 {
		return 0
	}
	if version >= 3 {
		return v
	}
	if v >= 1 && v <= 3 {
		return 4 - v
	}
	return 0
}

// ToScore coerces a raw JSON value (float64, int, or numeric string) into a
// criterion score, returning 0 for anything unusable.
func ToScore(raw any) int {
	switch v := raw.(type) {
	case int:
		return clampScore(v)
	case int64:
		return clampScore(int(v))
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0
		}
		return clampScore(n)
	case string:
		switch v {
		case "0":
			return 0
		case "1":
			return 1
		case "2":
			return 2
		case "3":
			return 3
		}
	}
	return 0
}

func clampScore(n int) int {
	if n < 0 || n > 3 {
		return 0
	}
	return n
}

// HasScore reports whether raw is an explicit integer score in [0,3], as
// opposed to absent or malformed. "0" counts as set.
func HasScore(raw any) bool {
	switch v := raw.(type) {
	case int:
		return v >= 0 && v <= 3
	case int64:
		return v >= 0 && v <= 3
	case float64:
		n := int(v)
		return float64(n) == v && n >= 0 && n <= 3
	case string:
		return v == "0" || v == "1" || v == "2" || v == "3"
	}
	return false
}

// PayloadScoringVersion reads scoring_version from a decoded payload.
// Payloads written before versioning return 0.
func PayloadScoringVersion(payload map[string]any) int {
	switch v := payload["scoring_version"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// AvailabilityRaw picks the availability value from one scoring entry,
// falling back to the legacy "gap" key.
func AvailabilityRaw(entry map[string]any) (any, bool) {
	if v, ok := entry["availability"]; ok {
		return v, true
	}
	if v, ok := entry["gap"]; ok {
		return v, true
	}
	return nil, false
}
