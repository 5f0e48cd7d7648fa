package agent

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const tableFormatVersion = 1

// rowsHint caps map preallocation; the row count in a file is untrusted.
const rowsHint = 1024

// record is the on-disk form of one table row.
type record struct {
	HandValue    int
	DealerUpcard int
	UsableAce    bool
	Values       Values
}

// MarshalBinary implements encoding.BinaryMarshaler. Rows are written as
// an explicit list in States order.
func (t *QTable) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(tableFormatVersion); err != nil {
		return nil, err
	}
	if err := enc.Encode(t.Len()); err != nil {
		return nil, err
	}
	for _, s := range t.States() {
		rec := record{
			HandValue:    s.HandValue,
			DealerUpcard: s.DealerUpcard,
			UsableAce:    s.UsableAce,
			Values:       *t.rows[s],
		}
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The decoded table
// keeps get-or-insert semantics for states it has never seen.
func (t *QTable) UnmarshalBinary(buf []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(buf))
	var version int
	if err := dec.Decode(&version); err != nil {
		return err
	}
	if version != tableFormatVersion {
		return fmt.Errorf("unsupported q-table format version %d", version)
	}
	var n int
	if err := dec.Decode(&n); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("invalid q-table row count %d", n)
	}

	rows := make(map[State]*Values, min(n, rowsHint))
	for i := 0; i < n; i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		v := rec.Values
		rows[State{HandValue: rec.HandValue, DealerUpcard: rec.DealerUpcard, UsableAce: rec.UsableAce}] = &v
	}
	t.rows = rows
	numStates.Set(int64(len(rows)))
	return nil
}

// Save writes the table to path, replacing any existing file atomically.
func (q *QLearner) Save(path string) error {
	b, err := q.table.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode q-table: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save q-table: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("save q-table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save q-table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save q-table: %w", err)
	}
	return nil
}

// Load replaces the learner's table with the one stored at path. A missing
// file reports ErrNoTable.
func (q *QLearner) Load(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoTable, path)
	}
	if err != nil {
		return fmt.Errorf("load q-table: %w", err)
	}
	t := NewQTable()
	if err := t.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("decode q-table %s: %w", path, err)
	}
	q.table = t
	return nil
}
