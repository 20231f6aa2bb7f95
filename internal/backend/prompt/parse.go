package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"nlpd/internal/engine"
)

// ErrNoJSON is returned when a reply carries no JSON value.
var ErrNoJSON = errors.New("reply contains no JSON")

// ExtractJSON returns the outermost JSON object or array in a reply,
// tolerating markdown fences and chatter around it.
func ExtractJSON(reply string) (string, error) {
	start := strings.IndexAny(reply, "{[")
	if start < 0 {
		return "", ErrNoJSON
	}
	closer := byte('}')
	if reply[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(reply, closer)
	if end < start {
		return "", ErrNoJSON
	}
	return reply[start : end+1], nil
}

type answerReply struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// ParseAnswer decodes an Answer reply and locates the answer span in context.
// The returned Answer text is the span as it appears in context.
func ParseAnswer(reply, context string) (engine.Answer, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return engine.Answer{}, err
	}
	var r answerReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return engine.Answer{}, fmt.Errorf("decode answer: %w", err)
	}
	span := strings.TrimSpace(r.Answer)
	if span == "" {
		return engine.Answer{}, errors.New("empty answer")
	}
	i, j, ok := locate(context, span, 0)
	if !ok {
		return engine.Answer{}, fmt.Errorf("answer %q is not a span of the context", span)
	}
	start := utf8.RuneCountInString(context[:i])
	return engine.Answer{
		Score:  clampScore(r.Score),
		Start:  uint32(start),
		End:    uint32(start + utf8.RuneCountInString(context[i:j])),
		Answer: context[i:j],
	}, nil
}

type labelReply struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ParseLabels decodes a Classify reply. Only candidate labels are kept,
// spelled as the caller spelled them; candidates the engine skipped score 0.
// The result is ordered best first, ties in candidate order.
func ParseLabels(reply string, candidates []string) ([]engine.Label, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}
	var rs []labelReply
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		var single labelReply
		if err2 := json.Unmarshal([]byte(raw), &single); err2 != nil {
			return nil, fmt.Errorf("decode labels: %w", err)
		}
		rs = []labelReply{single}
	}

	scores := make([]float32, len(candidates))
	matched := false
	for _, r := range rs {
		for i, c := range candidates {
			if strings.EqualFold(strings.TrimSpace(r.Label), c) {
				scores[i] = clampScore(r.Score)
				matched = true
				break
			}
		}
	}
	if !matched {
		return nil, errors.New("reply names none of the candidate labels")
	}
	out := make([]engine.Label, len(candidates))
	for i, c := range candidates {
		out[i] = engine.Label{Label: c, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

type entityReply struct {
	Word  string  `json:"word"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ParseEntities decodes a Tag reply and locates each entity in text,
// scanning forward so repeated words get successive offsets. Entities that
// do not occur in text are dropped.
func ParseEntities(reply, text string) ([]engine.Entity, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return nil, err
	}
	var rs []entityReply
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	out := make([]engine.Entity, 0, len(rs))
	cursor := 0
	for _, r := range rs {
		word := strings.TrimSpace(r.Word)
		if word == "" {
			continue
		}
		i, j, ok := locate(text, word, cursor)
		if !ok {
			// Engines sometimes reorder; retry from the start once.
			if i, j, ok = locate(text, word, 0); !ok {
				continue
			}
		} else {
			cursor = j
		}
		out = append(out, engine.Entity{
			Word:   text[i:j],
			Score:  clampScore(r.Score),
			Label:  strings.ToUpper(strings.TrimSpace(r.Label)),
			Offset: uint32(utf8.RuneCountInString(text[:i])),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Offset < out[b].Offset })
	return out, nil
}

// locate finds span in text at or after byte offset from, exact match first
// and then case-insensitively. It returns the byte range of the match.
func locate(text, span string, from int) (int, int, bool) {
	if from > len(text) {
		return 0, 0, false
	}
	if k := strings.Index(text[from:], span); k >= 0 {
		return from + k, from + k + len(span), true
	}
	n := utf8.RuneCountInString(span)
	for i := from; i < len(text); {
		j := i
		for c := 0; c < n && j < len(text); c++ {
			_, size := utf8.DecodeRuneInString(text[j:])
			j += size
		}
		if strings.EqualFold(text[i:j], span) {
			return i, j, true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return 0, 0, false
}

func clampScore(s float64) float32 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return float32(s)
	}
}
