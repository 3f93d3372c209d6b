// Package caster turns values into the string payloads carried on pubsub
// topics and websocket frames, and reads them back.
package caster

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type Caster[T any] interface {
	Encode(v T) (string, error)
	Decode(payload string) (T, error)
}

// JSON encodes with encoding/json. Strict decoding rejects fields T does not
// declare and anything after the first value; request bodies use it.
type JSON[T any] struct {
	Strict bool
}

func (c JSON[T]) Encode(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrapf(err, "encode %T", v)
	}
	return string(data), nil
}

func (c JSON[T]) Decode(payload string) (T, error) {
	return c.DecodeReader(strings.NewReader(payload))
}

func (c JSON[T]) DecodeReader(r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if c.Strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&v); err != nil {
		return v, errors.Wrapf(err, "decode %T", v)
	}
	if c.Strict && dec.More() {
		return v, errors.Errorf("decode %T: trailing data", v)
	}
	return v, nil
}
