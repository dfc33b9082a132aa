package transform

import "time"

// str returns the first key holding a string value, or "".
func str(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok {
			return v
		}
	}
	return ""
}

// num returns the first key holding a numeric value, or 0. JSON numbers
// decode as float64; integer values are accepted too for records built
// in-process.
func num(raw map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		}
	}
	return 0
}

// boolOr returns the first key holding a boolean value, or the default.
func boolOr(raw map[string]any, def bool, keys ...string) bool {
	for _, key := range keys {
		if v, ok := raw[key].(bool); ok {
			return v
		}
	}
	return def
}

// strList returns the first key holding a list, keeping its string
// elements. Missing keys yield an empty list.
func strList(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		if list, ok := toStrings(raw[key]); ok {
			return list
		}
	}
	return []string{}
}

// strListOrNil is strList but yields nil when no key holds a list.
func strListOrNil(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		if list, ok := toStrings(raw[key]); ok {
			return list
		}
	}
	return nil
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// timeVal parses the first key holding an RFC 3339 timestamp. Unparseable
// or missing values yield the zero time, never an error.
func timeVal(raw map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				return t
			}
		case time.Time:
			return v
		}
	}
	return time.Time{}
}
