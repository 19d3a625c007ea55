package links

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Param is a single key/value pair of an attribution payload.
type Param struct {
	Key   string
	Value string
}

// Params keeps attribution payload entries in source order.
type Params []Param

// Get returns the first value stored under key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// Without returns a copy of p with every entry for keys removed.
func (p Params) Without(keys ...string) Params {
	if len(p) == 0 {
		return nil
	}
	out := make(Params, 0, len(p))
	for _, param := range p {
		if containsKey(keys, param.Key) {
			continue
		}
		out = append(out, param)
	}
	return out
}

// Truthy reports whether key is present with a value other than "",
// "false", "0" or "null".
func (p Params) Truthy(key string) bool {
	value, ok := p.Get(key)
	if !ok {
		return false
	}
	switch value {
	case "", "false", "0", "null":
		return false
	default:
		return true
	}
}

// UnmarshalJSON decodes a JSON object keeping key order. Non-string values
// are kept as their literal JSON text.
func (p *Params) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("links: params must be a JSON object")
	}
	out := Params{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("links: unexpected params key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, Param{Key: key, Value: rawString(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalJSON encodes p as a JSON object in order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(param.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParamsFromMap converts an unordered map into Params sorted by key.
func ParamsFromMap(values map[string]any) Params {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make(Params, 0, len(keys))
	for _, key := range keys {
		out = append(out, Param{Key: key, Value: stringify(values[key])})
	}
	return out
}

func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err == nil {
		return compact.String()
	}
	return string(trimmed)
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool, float64, float32, int, int64, int32, uint, uint64, uint32:
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
