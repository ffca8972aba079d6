package contacts

import (
	"encoding/json"
	"strings"
)

// FlexibleList holds a provider field that arrives either as plain text or as
// a JSON-encoded list of records. The provider exports profile columns
// verbatim, so the same column can be `University of Michigan` for one row
// and `[{"school": "University of Michigan", "degree": "BSE"}]` for the next.
type FlexibleList struct {
	raw    string
	values []string
}

// nameKeys are probed, in order, when a list element is a JSON object.
var nameKeys = []string{"name", "school", "title", "company"}

// ParseFlexibleList decodes a raw field into a FlexibleList. It never fails:
// anything that is not valid JSON is kept as plain comma-separated text, and
// a nil receiver access degrades to an empty value.
func ParseFlexibleList(raw string) FlexibleList {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return FlexibleList{}
	}

	if strings.HasPrefix(raw, "[") {
		if values, ok := decodeJSONList(raw); ok {
			return FlexibleList{raw: raw, values: values}
		}
	}

	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	return FlexibleList{raw: raw, values: values}
}

func decodeJSONList(raw string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}

	values := make([]string, 0, len(items))
	for _, item := range items {
		switch typed := item.(type) {
		case string:
			if s := strings.TrimSpace(typed); s != "" {
				values = append(values, s)
			}
		case map[string]any:
			for _, key := range nameKeys {
				if name, ok := typed[key].(string); ok && strings.TrimSpace(name) != "" {
					values = append(values, strings.TrimSpace(name))
					break
				}
			}
		}
	}

	return values, true
}

// Values returns the decoded entries.
func (l FlexibleList) Values() []string {
	return l.values
}

// Text returns the entries joined back into a single matchable string.
func (l FlexibleList) Text() string {
	if len(l.values) == 0 {
		return l.raw
	}
	return strings.Join(l.values, ", ")
}

// Empty reports whether the field carried no usable signal.
func (l FlexibleList) Empty() bool {
	return len(l.values) == 0 && strings.TrimSpace(l.raw) == ""
}
