package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds the fields of a stored record that the tracker does not model.
// They are written back unchanged so older or newer payloads survive a save.
type Extra map[string]json.RawMessage

var knownKeyCache sync.Map

// knownKeys lists the json names declared on the struct type of v.
func knownKeys(v interface{}) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := knownKeyCache.Load(t); ok {
		return cached.([]string)
	}

	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	knownKeyCache.Store(t, keys)
	return keys
}

// decodeWithExtra unmarshals data into target and returns the leftover fields.
func decodeWithExtra(data []byte, target interface{}) (Extra, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, key := range knownKeys(target) {
		delete(fields, key)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return Extra(fields), nil
}

// encodeWithExtra marshals base and merges extra into it. Declared fields win.
func encodeWithExtra(base interface{}, extra Extra) ([]byte, error) {
	payload, err := json.Marshal(base)
	if err != nil || len(extra) == 0 {
		return payload, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(payload, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Clone copies the map. The raw values are never mutated in place.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for key, value := range e {
		out[key] = value
	}
	return out
}
