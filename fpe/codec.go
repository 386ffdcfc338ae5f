package fpe

// DirtyChar records one character that is outside the working alphabet,
// together with its rune offset in the original string. The mask produced by
// CleanupValue is ordered by position.
type DirtyChar struct {
	Pos  int
	Char rune
}

// CleanupValue splits a string into the alphabet characters ("clean") and a
// positional mask of everything else (punctuation, spaces, out-of-alphabet
// runes). DirtyupValue(clean, mask) reassembles the original exactly.
func CleanupValue(s string, a *Alphabet) (string, []DirtyChar) {
	clean := make([]rune, 0, len(s))
	var mask []DirtyChar

	pos := 0
	for _, r := range s {
		if a.Contains(r) {
			clean = append(clean, r)
		} else {
			mask = append(mask, DirtyChar{Pos: pos, Char: r})
		}
		pos++
	}
	return string(clean), mask
}

// DirtyupValue re-splices masked characters into a clean string at their
// original rune offsets. Inverse of CleanupValue for any input.
func DirtyupValue(clean string, mask []DirtyChar) string {
	cleanRunes := []rune(clean)
	out := make([]rune, 0, len(cleanRunes)+len(mask))

	ci, mi := 0, 0
	for len(out) < len(cleanRunes)+len(mask) {
		if mi < len(mask) && mask[mi].Pos == len(out) {
			out = append(out, mask[mi].Char)
			mi++
			continue
		}
		out = append(out, cleanRunes[ci])
		ci++
	}
	return string(out)
}
