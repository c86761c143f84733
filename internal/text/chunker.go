package text

// Fragment is one bounded slice of a document, ordered by Index.
type Fragment struct {
	Index int
	Text  string
}

// Split cuts text into fragments of at most size runes, with consecutive
// fragments sharing exactly overlap runes. The fragments cover the input with
// no gaps: dropping the first overlap runes of every fragment after the first
// reconstructs the original text. Deterministic, no I/O.
//
// overlap must be smaller than size; out-of-range values are clamped so the
// cursor always advances.
func Split(text string, size, overlap int) []Fragment {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	step := size - overlap

	var fragments []Fragment
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		fragments = append(fragments, Fragment{
			Index: len(fragments),
			Text:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}

	return fragments
}
