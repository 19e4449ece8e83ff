package graph

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTermRunes 关键词最短长度
const minTermRunes = 4

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		about above after again against also because been before being below between both
		cannot could does doing down during each even every from further have having here
		hers herself himself into itself just like made make many more most much must myself
		only other ours ourselves over same shall should some such than that their theirs them
		themselves then there these they this those through under until upon very want were
		what when where which while whom with within without would your yours yourself
		yourselves will well http https www html page pages video using used
		able thing things said says know need first last next back still take`) {
		stopWords[w] = struct{}{}
	}
}

// TopTerms 统计文本中出现最多的关键词
// 关键词为小写的纯字母单词，至少 4 个字符且不在停用词表中；频次相同按字典序
func TopTerms(texts []string, n int) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r)
		}) {
			if utf8.RuneCountInString(w) < minTermRunes {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
