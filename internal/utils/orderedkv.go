package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// OrderedKV is a value with an explicit position in its map.
type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap marshals to a JSON object whose keys appear in Order.
// Feed aggregates (scope rankings) are cached in this form so a decoded
// payload replays in the same rank order it was computed in.
type OrderedKVMap[T any] map[string]OrderedKV[T]

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	type pair struct {
		key   string
		value T
		order int64
	}
	pairs := make([]pair, 0, len(om))
	for k, v := range om {
		pairs = append(pairs, pair{
			key:   k,
			value: v.Value,
			order: v.Order,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].order < pairs[j].order
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON assigns Order by encounter position, so a map encoded
// with MarshalJSON round-trips with its ordering intact.
func (om *OrderedKVMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	result := make(OrderedKVMap[T])
	var order int64
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}

		var value T
		if err := dec.Decode(&value); err != nil {
			return err
		}

		result[key] = OrderedKV[T]{Value: value, Order: order}
		order++
	}

	*om = result
	return nil
}

// Keys returns the keys in Order.
func (om OrderedKVMap[T]) Keys() []string {
	type pair struct {
		key   string
		order int64
	}
	pairs := make([]pair, 0, len(om))
	for k, v := range om {
		pairs = append(pairs, pair{key: k, order: v.Order})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].order < pairs[j].order
	})
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.key
	}
	return keys
}
