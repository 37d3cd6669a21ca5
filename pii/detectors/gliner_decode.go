package detectors

import (
	"math"
	"sort"
	"unicode"
)

// word is a whitespace-delimited token with its byte offsets in the source
// text. GLiNER classifies spans of words, so char positions of an entity are
// recovered from the first and last word it covers.
type word struct {
	text  string
	start int
	end   int
}

// splitWords splits text on unicode whitespace, keeping byte offsets.
func splitWords(text string) []word {
	var words []word
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, word{text: text[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{text: text[start:], start: start, end: len(text)})
	}
	return words
}

// buildSpanIndex enumerates candidate spans the way the exported graph
// expects them: for each start word, all widths up to maxWidth. Spans running
// past the last word are masked out but still occupy their slot so span s of
// start i and width w is always at index i*maxWidth+w.
func buildSpanIndex(numWords, maxWidth int) (spanIdx []int64, spanMask []bool) {
	numSpans := numWords * maxWidth
	spanIdx = make([]int64, numSpans*2)
	spanMask = make([]bool, numSpans)

	for i := 0; i < numWords; i++ {
		for w := 0; w < maxWidth; w++ {
			s := i*maxWidth + w
			end := i + w
			if end >= numWords {
				continue
			}
			spanIdx[s*2] = int64(i)
			spanIdx[s*2+1] = int64(end)
			spanMask[s] = true
		}
	}
	return spanIdx, spanMask
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// spanCandidate is a scored (word range, label) pair above threshold.
type spanCandidate struct {
	startWord int
	endWord   int
	label     int
	score     float64
}

// decodeSpans turns raw span logits into non-overlapping entities. Scores are
// sigmoid probabilities per (span, label); selection is greedy by score, so a
// higher-scoring span suppresses any overlapping lower-scoring one (flat NER).
func decodeSpans(text string, words []word, labels []string, logits []float32, maxWidth int, threshold float64) []Entity {
	numWords := len(words)
	numLabels := len(labels)
	if numWords == 0 || numLabels == 0 {
		return []Entity{}
	}

	var candidates []spanCandidate
	for i := 0; i < numWords; i++ {
		for w := 0; w < maxWidth; w++ {
			end := i + w
			if end >= numWords {
				break
			}
			s := i*maxWidth + w
			base := s * numLabels
			if base+numLabels > len(logits) {
				return []Entity{}
			}
			for l := 0; l < numLabels; l++ {
				score := sigmoid(float64(logits[base+l]))
				if score < threshold {
					continue
				}
				candidates = append(candidates, spanCandidate{
					startWord: i,
					endWord:   end,
					label:     l,
					score:     score,
				})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	entities := []Entity{}
	taken := make([]bool, numWords)
	for _, c := range candidates {
		overlap := false
		for i := c.startWord; i <= c.endWord; i++ {
			if taken[i] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for i := c.startWord; i <= c.endWord; i++ {
			taken[i] = true
		}

		startPos := words[c.startWord].start
		endPos := words[c.endWord].end
		entities = append(entities, Entity{
			Text:     text[startPos:endPos],
			Label:    labels[c.label],
			StartPos: startPos,
			EndPos:   endPos,
			Score:    c.score,
		})
	}

	// Report in document order regardless of score ordering above.
	sort.SliceStable(entities, func(a, b int) bool {
		return entities[a].StartPos < entities[b].StartPos
	})
	return entities
}
