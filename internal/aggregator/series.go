package aggregator

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Entry is one keyed value of a Series.
type Entry struct {
	Key   string
	Value float64
}

// Series is an ordered key to number mapping. It encodes as a JSON object
// whose keys keep the series order.
type Series []Entry

// MarshalJSON encodes the series as an ordered object.
func (s Series) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(s), func(i int) (string, any) { return s[i].Key, s[i].Value })
}

// Get returns the value stored under key.
func (s Series) Get(key string) (float64, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}

	return 0, false
}

// Keys returns the keys in order.
func (s Series) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, e := range s {
		keys = append(keys, e.Key)
	}

	return keys
}

func marshalOrdered(n int, at func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, val := at(i)

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// tally accumulates values per key, remembering first-seen key order.
type tally struct {
	values map[string]float64
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{values: make(map[string]float64), counts: make(map[string]int)}
}

func (t *tally) add(key string, v float64) {
	if _, ok := t.values[key]; !ok {
		t.order = append(t.order, key)
	}

	t.values[key] += v
	t.counts[key]++
}

// sums returns the accumulated values in first-seen order.
func (t *tally) sums() Series {
	out := make(Series, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Entry{Key: k, Value: t.values[k]})
	}

	return out
}

// means returns the per-key mean in first-seen order.
func (t *tally) means() Series {
	out := make(Series, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Entry{Key: k, Value: t.values[k] / float64(t.counts[k])})
	}

	return out
}

// top sorts descending by value, keeping input order among ties, and keeps at
// most n entries. n <= 0 keeps everything.
func top(s Series, n int) Series {
	sorted := make(Series, len(s))
	copy(sorted, s)

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}
