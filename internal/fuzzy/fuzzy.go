// Package fuzzy 给文件路径补全打分与排序。
//
// 规则按优先级：大小写不敏感完全匹配 1000，前缀匹配 900，
// 否则按子序列匹配累加分数（上限 899），任一模式字符找不到时为 0（被排除）。
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ExactScore  = 1000
	PrefixScore = 900

	matchBonus       = 10
	consecutiveBonus = 5
	separatorBonus   = 15
	camelBonus       = 10
	lengthBase       = 100
	earlyMatchBase   = 50
)

// Match 是一条排序结果。
type Match struct {
	Text  string
	Score int
}

// Score 计算 text 相对 pattern 的得分，0 表示不匹配。
func Score(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	lowerText := strings.ToLower(text)
	lowerPattern := strings.ToLower(pattern)
	if lowerText == lowerPattern {
		return ExactScore
	}
	if strings.HasPrefix(lowerText, lowerPattern) {
		return PrefixScore
	}

	tr := []rune(text)
	lt := []rune(lowerText)
	lp := []rune(lowerPattern)
	if len(lt) != len(tr) {
		// 个别字符小写后长度变化，退回逐字符小写。
		lt = make([]rune, len(tr))
		for i, r := range tr {
			lt[i] = unicode.ToLower(r)
		}
	}

	score := 0
	pi := 0
	first := -1
	last := -2
	run := 0
	for ti := 0; ti < len(lt) && pi < len(lp); ti++ {
		if lt[ti] != lp[pi] {
			continue
		}
		if first < 0 {
			first = ti
		}
		score += matchBonus
		if last == ti-1 {
			run++
			score += run * consecutiveBonus
		} else {
			run = 0
		}
		if ti == 0 || isSeparator(tr[ti-1]) {
			score += separatorBonus
		}
		if ti > 0 && unicode.IsUpper(tr[ti]) && unicode.IsLower(tr[ti-1]) {
			score += camelBonus
		}
		last = ti
		pi++
	}
	if pi < len(lp) {
		return 0
	}

	score += max(0, lengthBase-utf8.RuneCountInString(text))
	score += max(0, earlyMatchBase-first)
	if score >= PrefixScore {
		score = PrefixScore - 1
	}
	return score
}

// Rank 返回得分大于 0 的条目，按分数降序、同分时短文本优先排序。
func Rank(items []string, pattern string) []Match {
	out := make([]Match, 0, len(items))
	for _, item := range items {
		if s := Score(item, pattern); s > 0 {
			out = append(out, Match{Text: item, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return utf8.RuneCountInString(out[i].Text) < utf8.RuneCountInString(out[j].Text)
	})
	return out
}

// Filter 返回排序后的文本；pattern 为空时原样返回 items 的副本。
func Filter(items []string, pattern string) []string {
	if pattern == "" {
		return append([]string(nil), items...)
	}
	ranked := Rank(items, pattern)
	out := make([]string, len(ranked))
	for i, m := range ranked {
		out[i] = m.Text
	}
	return out
}

func isSeparator(r rune) bool {
	switch r {
	case '/', '.', '-', '_':
		return true
	}
	return false
}
