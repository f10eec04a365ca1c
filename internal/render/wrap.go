package render

import "strings"

// wrapWithEllipsis wraps text to at most maxLines lines of maxWidth, with the
// final line ellipsized on overflow. Measurement is injected so the layout
// logic stays independent of any particular font face.
func wrapWithEllipsis(text string, maxWidth float64, maxLines int, measure func(string) float64) []string {
	if strings.TrimSpace(text) == "" || maxLines <= 0 {
		return nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	idx := 0

	// All but the last line break on plain word boundaries.
	for idx < len(words) && len(lines) < maxLines-1 {
		var lineWords []string
		for idx < len(words) {
			candidate := strings.Join(append(append([]string{}, lineWords...), words[idx]), " ")
			if measure(candidate) <= maxWidth {
				lineWords = append(lineWords, words[idx])
				idx++
			} else {
				break
			}
		}
		if len(lineWords) == 0 {
			// A single word wider than the line; hard-truncate it. Trim by
			// runes so a multi-byte name is never cut mid-character.
			word := []rune(words[idx])
			for len(word) > 0 && measure(string(word)+"...") > maxWidth {
				word = word[:len(word)-1]
			}
			if len(word) == 0 {
				break
			}
			lineWords = append(lineWords, string(word)+"...")
			idx++
		}
		lines = append(lines, strings.Join(lineWords, " "))
	}

	if idx < len(words) {
		var lineWords []string
		for idx < len(words) {
			candidate := strings.Join(append(append([]string{}, lineWords...), words[idx]), " ")
			withEllipsis := candidate
			if idx < len(words)-1 {
				withEllipsis += "..."
			}
			if measure(withEllipsis) <= maxWidth {
				lineWords = append(lineWords, words[idx])
				idx++
			} else {
				break
			}
		}
		last := strings.Join(lineWords, " ")
		if idx < len(words) {
			runes := []rune(last)
			for len(runes) > 0 && measure(strings.TrimRight(string(runes), " ")+"...") > maxWidth {
				runes = runes[:len(runes)-1]
			}
			if len(runes) == 0 {
				last = "..."
			} else {
				last = strings.TrimRight(string(runes), " ") + "..."
			}
		}
		lines = append(lines, last)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
