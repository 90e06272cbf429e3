package odoo

// Record is a single row as decoded from the wire. Unset fields come back
// as false rather than being absent, so the accessors normalize that.
type Record map[string]any

// Int reads an integer field, 0 when unset.
func (r Record) Int(key string) int {
	n, _ := asInt(r[key])
	return n
}

// Str reads a string field, "" when unset.
func (r Record) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// Float reads a numeric field, 0 when unset.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Bool reads a boolean field.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Pair reads a Many2one field, which arrives as [id, display name].
// A scalar id without a name yields ("" , id).
func (r Record) Pair(key string) (int, string) {
	switch v := r[key].(type) {
	case []any:
		if len(v) == 0 {
			return 0, ""
		}
		id, _ := asInt(v[0])
		name := ""
		if len(v) > 1 {
			name, _ = v[1].(string)
		}
		return id, name
	default:
		id, ok := asInt(v)
		if !ok {
			return 0, ""
		}
		return id, ""
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asRecords(v any) []Record {
	rows, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func asInts(v any) []int {
	vals, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(vals))
	for _, val := range vals {
		if n, ok := asInt(val); ok {
			out = append(out, n)
		}
	}
	return out
}
