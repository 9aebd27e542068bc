package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText 按显示宽度做词级别换行；宽字符按两列计算。
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	lines := []string{}
	for _, raw := range strings.Split(text, "\n") {
		if raw == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapLine(raw, width)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	current := ""
	for _, word := range strings.Fields(line) {
		ww := runewidth.StringWidth(word)
		if current == "" {
			if ww > width {
				out = append(out, breakLongWord(word, width)...)
				continue
			}
			current = word
			continue
		}
		if runewidth.StringWidth(current)+1+ww <= width {
			current += " " + word
			continue
		}
		out = append(out, current)
		current = ""
		if ww > width {
			out = append(out, breakLongWord(word, width)...)
			continue
		}
		current = word
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}

// breakLongWord 把超宽单词按列切开，结果中每段宽度都不超过 width。
func breakLongWord(word string, width int) []string {
	return wrapPreserveSpaces(word, width)
}

// wrapPreserveSpaces 按列硬切，不折叠空白；工具输出需要保留缩进。
func wrapPreserveSpaces(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	current := []rune{}
	w := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if w+rw > width && len(current) > 0 {
			out = append(out, string(current))
			current = current[:0]
			w = 0
		}
		current = append(current, r)
		w += rw
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}
