// Package abstract rebuilds readable abstract text from the inverted
// index that OpenAlex ships in place of plain text.
package abstract

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Entry is one word of an inverted index together with the token
// positions it occupies in the abstract.
type Entry struct {
	Word      string
	Positions []int
}

// InvertedIndex is a word-to-positions mapping that preserves the key
// order of the JSON object it was decoded from. A plain Go map would
// randomize iteration order, and position ties between words must
// resolve in document order so that rebuilding is deterministic.
type InvertedIndex []Entry

// UnmarshalJSON decodes a JSON object into the index, keeping keys in
// document order. Malformed payloads (null, non-object values,
// non-integer positions) decode to an empty index rather than failing,
// matching the tolerant behavior of the rest of the document model.
func (ix *InvertedIndex) UnmarshalJSON(data []byte) error {
	*ix = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var entries InvertedIndex
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		word, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var positions []int
		if err := dec.Decode(&positions); err != nil {
			return nil
		}
		entries = append(entries, Entry{Word: word, Positions: positions})
	}

	*ix = entries
	return nil
}

// Rebuild reconstructs the abstract by flattening the index to
// (word, position) pairs, stable-sorting ascending by position and
// joining the words with single spaces. Positions need not be
// contiguous or start at zero. Returns "" for an empty index.
func Rebuild(ix InvertedIndex) string {
	type wordPos struct {
		word string
		pos  int
	}

	var pairs []wordPos
	for _, e := range ix {
		for _, p := range e.Positions {
			pairs = append(pairs, wordPos{word: e.Word, pos: p})
		}
	}
	if len(pairs) == 0 {
		return ""
	}

	// Stable keeps document order for words claiming the same position.
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, wp := range pairs {
		words[i] = wp.word
	}
	return strings.Join(words, " ")
}
