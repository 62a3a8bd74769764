// util/json.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path to the object holding the duplicate (e.g., "trajectories.color")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys scans JSON content and returns all duplicate keys
// found. encoding/json silently keeps the last value for a repeated key,
// which hides typos in hand-written scene files.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))
	var duplicates []DuplicateJSONKey

	var walk func(path []string) error
	walk = func(path []string) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			return nil
		}

		switch delim {
		case '{':
			seen := make(map[string]bool)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				if seen[key] {
					duplicates = append(duplicates, DuplicateJSONKey{Path: strings.Join(path, "."), Key: key})
				}
				seen[key] = true
				if err := walk(append(path, key)); err != nil {
					return err
				}
			}
		case '[':
			for dec.More() {
				if err := walk(path); err != nil {
					return err
				}
			}
		}

		// Consume the closing delimiter.
		_, err = dec.Token()
		return err
	}

	_ = walk(nil)
	return duplicates
}

func UnmarshalJSON[T any](r io.Reader, out *T) error {
	// Unfortunately we need the contents as an array of bytes so that we
	// can issue reasonable errors.
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

// Unmarshal the bytes into the given type but go through some efforts to
// return useful error messages when the JSON is invalid...
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, char := decodeOffset(serr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %w", line, char, serr)

	case errors.As(err, &terr):
		line, char := decodeOffset(terr.Offset)
		return fmt.Errorf("Error at line %d, character %d: %s value for %s.%s invalid for type %s",
			line, char, terr.Value, terr.Struct, terr.Field, terr.Type.String())

	default:
		return err
	}
}
