package recon

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// listing is the canonical shape of one remote event record.
type listing struct {
	ID   string
	Name string
	Link string
	Date string
}

// Remote systems name their fields in one of two casing conventions.
// Lowercase keys take priority, matching what most partner sites emit.
var (
	idKeys   = []string{"id", "ID"}
	nameKeys = []string{"eventname", "EventName"}
	linkKeys = []string{"eventlink", "EventLink"}
	dateKeys = []string{"eventdate", "EventDate"}
)

// adapt maps a raw untyped remote record onto the canonical listing,
// trying each known key in priority order. Missing name/date fall back to
// a placeholder; a missing link stays empty.
func adapt(record map[string]any) listing {
	return listing{
		ID:   field(record, idKeys, ""),
		Name: sanitize(field(record, nameKeys, "-")),
		Link: field(record, linkKeys, ""),
		Date: field(record, dateKeys, "-"),
	}
}

func field(record map[string]any, keys []string, fallback string) string {
	for _, key := range keys {
		v, ok := record[key]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}

	return fallback
}

// JSON numbers arrive as float64; ids especially.
func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes any html tags a partner site left in its event names.
func sanitize(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}
