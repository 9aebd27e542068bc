package agent

import (
	"strconv"
	"unicode/utf8"
)

// truncateMiddle 保留首尾各一半字节预算，中间替换为 "…N chars truncated…"。
// 切分点总落在 rune 边界上。
func truncateMiddle(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	if maxBytes <= 0 {
		return marker(utf8.RuneCountInString(s))
	}
	left := maxBytes / 2
	right := maxBytes - left
	removed, prefix, suffix := splitUTF8(s, left, right)
	return prefix + marker(removed) + suffix
}

func marker(removed int) string {
	return "…" + strconv.Itoa(removed) + " chars truncated…"
}

func splitUTF8(s string, prefixBytes, suffixBytes int) (removed int, prefix, suffix string) {
	tailStart := len(s) - suffixBytes
	if tailStart < 0 {
		tailStart = 0
	}
	prefixEnd := 0
	suffixStart := len(s)
	started := false
	for idx := range s {
		_, size := utf8.DecodeRuneInString(s[idx:])
		end := idx + size
		if end <= prefixBytes {
			prefixEnd = end
			continue
		}
		if idx >= tailStart {
			if !started {
				suffixStart = idx
				started = true
			}
			continue
		}
		removed++
	}
	if suffixStart < prefixEnd {
		suffixStart = prefixEnd
	}
	return removed, s[:prefixEnd], s[suffixStart:]
}
