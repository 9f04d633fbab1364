package abstract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRebuild_Basic(t *testing.T) {
	ix := InvertedIndex{
		{Word: "B", Positions: []int{1}},
		{Word: "A", Positions: []int{0}},
	}

	got := Rebuild(ix)
	if got != "A B" {
		t.Errorf("Rebuild() = %q, want %q", got, "A B")
	}
}

func TestRebuild_RepeatedWord(t *testing.T) {
	ix := InvertedIndex{
		{Word: "the", Positions: []int{0, 2}},
		{Word: "cat", Positions: []int{1}},
		{Word: "mat", Positions: []int{3}},
	}

	got := Rebuild(ix)
	if got != "the cat the mat" {
		t.Errorf("Rebuild() = %q, want %q", got, "the cat the mat")
	}
}

func TestRebuild_NonContiguousPositions(t *testing.T) {
	// Positions need not start at zero or be contiguous.
	ix := InvertedIndex{
		{Word: "world", Positions: []int{17}},
		{Word: "hello", Positions: []int{5}},
	}

	got := Rebuild(ix)
	if got != "hello world" {
		t.Errorf("Rebuild() = %q, want %q", got, "hello world")
	}
}

func TestRebuild_DuplicatePositionsTieBreak(t *testing.T) {
	// Two words claiming the same position resolve in index order.
	ix := InvertedIndex{
		{Word: "first", Positions: []int{0}},
		{Word: "second", Positions: []int{0}},
	}

	got := Rebuild(ix)
	if got != "first second" {
		t.Errorf("Rebuild() = %q, want %q", got, "first second")
	}
}

func TestRebuild_Empty(t *testing.T) {
	if got := Rebuild(nil); got != "" {
		t.Errorf("Rebuild(nil) = %q, want empty", got)
	}
	if got := Rebuild(InvertedIndex{}); got != "" {
		t.Errorf("Rebuild(empty) = %q, want empty", got)
	}
}

func TestRebuild_OrderPreserving(t *testing.T) {
	// Re-deriving positions from the rebuilt text by word-boundary split
	// must match each word's original relative position order.
	ix := InvertedIndex{
		{Word: "despite", Positions: []int{0}},
		{Word: "growing", Positions: []int{1}},
		{Word: "interest", Positions: []int{2}},
		{Word: "in", Positions: []int{3, 57}},
		{Word: "the", Positions: []int{10, 33, 56}},
	}

	words := strings.Fields(Rebuild(ix))

	derived := make(map[string][]int)
	for i, w := range words {
		derived[w] = append(derived[w], i)
	}
	for _, e := range ix {
		if len(derived[e.Word]) != len(e.Positions) {
			t.Fatalf("word %q occurs %d times, want %d", e.Word, len(derived[e.Word]), len(e.Positions))
		}
		for i := 1; i < len(derived[e.Word]); i++ {
			if derived[e.Word][i] <= derived[e.Word][i-1] {
				t.Errorf("word %q positions not strictly increasing: %v", e.Word, derived[e.Word])
			}
		}
	}
}

func TestInvertedIndex_UnmarshalJSON(t *testing.T) {
	var ix InvertedIndex
	data := `{"B": [1], "A": [0, 2]}`
	if err := json.Unmarshal([]byte(data), &ix); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := InvertedIndex{
		{Word: "B", Positions: []int{1}},
		{Word: "A", Positions: []int{0, 2}},
	}
	if len(ix) != len(want) {
		t.Fatalf("Unmarshal() decoded %d entries, want %d", len(ix), len(want))
	}
	for i := range want {
		if ix[i].Word != want[i].Word {
			t.Errorf("entry %d word = %q, want %q", i, ix[i].Word, want[i].Word)
		}
	}

	if got := Rebuild(ix); got != "A B A" {
		t.Errorf("Rebuild() = %q, want %q", got, "A B A")
	}
}

func TestInvertedIndex_UnmarshalJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"null", `null`},
		{"string", `"not an index"`},
		{"array", `[1, 2, 3]`},
		{"non-integer positions", `{"A": ["x"]}`},
		{"nested object", `{"A": {"b": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ix InvertedIndex
			if err := json.Unmarshal([]byte(tt.data), &ix); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v, want nil", tt.data, err)
			}
			if len(ix) != 0 {
				t.Errorf("Unmarshal(%s) decoded %d entries, want 0", tt.data, len(ix))
			}
			if got := Rebuild(ix); got != "" {
				t.Errorf("Rebuild() = %q, want empty", got)
			}
		})
	}
}
