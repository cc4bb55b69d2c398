package diffcodec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/archlens/sysmodel/pkg/convert"
)

// parseAttrs splits a `[key:value,key:value]` bracket body into a
// map, coercing each value to a number when possible and falling back
// to a string otherwise — the reference engine's apoc/convert
// coercion idiom (§4.4 "[ADD]").
func parseAttrs(body string) map[string]any {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	out := make(map[string]any)
	for _, pair := range strings.Split(body, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(pair[:idx])
		val := strings.TrimSpace(pair[idx+1:])
		if key == "" {
			continue
		}
		if f, ok := convert.ToFloat64(val); ok {
			out[key] = f
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// formatAttrs renders a (already-ordered) list of key/value pairs as
// the bracket body the parser above accepts, e.g. "x:10,y:5,zoom:L1".
func formatAttrs(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv[0]+":"+kv[1])
	}
	return strings.Join(parts, ",")
}

// formatNumber renders a float64 without a trailing ".0" for whole
// numbers, matching the compact wire format's terse numeric style.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatExtra renders the Extra escape-hatch map in deterministic
// (sorted-key) order, one "key:value" pair per entry.
func formatExtra(extra map[string]any) [][2]string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		v := extra[k]
		switch val := v.(type) {
		case float64:
			out = append(out, [2]string{k, formatNumber(val)})
		case string:
			out = append(out, [2]string{k, val})
		default:
			out = append(out, [2]string{k, fmt.Sprintf("%v", val)})
		}
	}
	return out
}
