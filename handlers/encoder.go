package handlers

import (
	"bytes"
	"encoding/gob"
)

// GobEncoder round-trips arbitrary values through encoding/gob. It satisfies
// the events.Encoder interface and is used to give handlers a private copy
// of mutable payloads. Concrete payload types carried inside interface
// values must be registered with gob.Register first.
type GobEncoder struct{}

func (g *GobEncoder) Encode(v interface{}) ([]byte, error) {
	var x interface{} = v

	buf := &bytes.Buffer{}
	enc := gob.NewEncoder(buf)
	err := enc.Encode(&x)

	return buf.Bytes(), err
}

func (g *GobEncoder) Decode(data []byte) (interface{}, error) {
	var x interface{}

	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&x)

	return x, err
}
