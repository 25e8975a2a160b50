package steps

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the Program layout changes.
const schemaVersion uint16 = 1

var ErrSchema = errors.New("steps: unsupported schema version")

type bundle struct {
	Schema   uint16     `msgpack:"schema"`
	Programs []*Program `msgpack:"programs"`
}

// Encode writes programs as one msgpack document.
func Encode(w io.Writer, progs []*Program) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&bundle{Schema: schemaVersion, Programs: progs}); err != nil {
		return fmt.Errorf("encode programs: %w", err)
	}
	return nil
}

// Decode reads programs written by Encode.
func Decode(r io.Reader) ([]*Program, error) {
	var b bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	if b.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchema, b.Schema)
	}
	for _, p := range b.Programs {
		p.index()
	}
	return b.Programs, nil
}
