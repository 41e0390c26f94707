package trigram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// A Distribution is encoded as an object mapping each next character to its
// probability, e.g. {"d":0.5,"x":0.5}. Keys are written and read back in
// first-seen order so tie-breaking survives a round trip.

var (
	_ json.Marshaler        = Distribution(nil)
	_ json.Unmarshaler      = (*Distribution)(nil)
	_ msgpack.CustomEncoder = Distribution(nil)
	_ msgpack.CustomDecoder = (*Distribution)(nil)
	_ yaml.Marshaler        = Distribution(nil)
)

// MarshalJSON writes the distribution as an ordered JSON object.
func (d Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(t.Next))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.Prob)
		if err != nil {
			return nil, fmt.Errorf("trigram: encode probability for %q: %w", t.Next, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("trigram: distribution must be a JSON object, got %v", tok)
	}

	var out Distribution
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		next, err := decodeNext(key)
		if err != nil {
			return err
		}
		var prob float64
		if err := dec.Decode(&prob); err != nil {
			return fmt.Errorf("trigram: decode probability for %q: %w", key, err)
		}
		out = append(out, Transition{Next: next, Prob: prob})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = out
	return nil
}

// EncodeMsgpack writes the distribution as a msgpack map in first-seen order.
func (d Distribution) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(d)); err != nil {
		return err
	}
	for _, t := range d {
		if err := enc.EncodeString(string(t.Next)); err != nil {
			return err
		}
		if err := enc.EncodeFloat64(t.Prob); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads a map written by EncodeMsgpack, keeping key order.
func (d *Distribution) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*d = nil
		return nil
	}

	out := make(Distribution, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return err
		}
		next, err := decodeNext(key)
		if err != nil {
			return err
		}
		prob, err := dec.DecodeFloat64()
		if err != nil {
			return fmt.Errorf("trigram: decode probability for %q: %w", key, err)
		}
		out = append(out, Transition{Next: next, Prob: prob})
	}

	*d = out
	return nil
}

// MarshalYAML renders the distribution as an ordered mapping for display.
func (d Distribution) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range d {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(t.Next)},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(t.Prob, 'g', -1, 64)},
		)
	}
	return node, nil
}

func decodeNext(key string) (rune, error) {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || size != len(key) {
		return 0, fmt.Errorf("%w: next character %q is not a single character", ErrInvalidModel, key)
	}
	return r, nil
}
