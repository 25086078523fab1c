package detect

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// scoreReplySchema validates the structured reply shape some models emit
// despite the one-line instruction.
const scoreReplySchema = `{
	"type": "object",
	"required": ["score"],
	"properties": {
		"score": {"type": "integer"},
		"reasoning": {"type": "string"}
	}
}`

var (
	thinkTagRe  = regexp.MustCompile(`<think>[\s\S]*?(</think>|$)`)
	jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)
	scoreLineRe = regexp.MustCompile(`(?is)SCORE:\s*(100|[0-9]{1,2})\s*;\s*REASON:\s*(.*)`)
	bareScoreRe = regexp.MustCompile(`\b(100|[0-9]{1,2})\b`)
)

// stripThinkTags removes chain-of-thought blocks, including an unclosed
// trailing one, before any parsing runs.
func stripThinkTags(raw string) string {
	return strings.TrimSpace(thinkTagRe.ReplaceAllString(raw, ""))
}

// parseScoreReply extracts a score and rationale from a detector reply.
// Strategies run in order and the first that succeeds wins:
//
//  1. an embedded JSON object with a score field, validated by schema
//  2. the instructed "SCORE:<n>; REASON:<text>" line
//  3. the first standalone number, with the whole cleaned reply as the
//     rationale
//
// The score is always clamped to [0, 100].
func parseScoreReply(raw string) (Result, error) {
	cleaned := stripThinkTags(raw)

	if block := jsonBlockRe.FindString(cleaned); block != "" {
		if res, ok := parseJSONReply(block); ok {
			return res, nil
		}
	}

	if m := scoreLineRe.FindStringSubmatch(cleaned); m != nil {
		score, _ := strconv.Atoi(m[1])
		return Result{Score: clampScore(score), Reasoning: strings.TrimSpace(m[2])}, nil
	}

	if m := bareScoreRe.FindStringSubmatch(cleaned); m != nil {
		score, _ := strconv.Atoi(m[1])
		return Result{Score: clampScore(score), Reasoning: cleaned}, nil
	}

	return Result{}, &ParseError{Raw: raw}
}

// parseJSONReply attempts the structured-reply strategy. Any schema or
// decode failure falls through to the next strategy.
func parseJSONReply(block string) (Result, bool) {
	if err := validateScoreReply(block); err != nil {
		return Result{}, false
	}
	var reply struct {
		Score     int    `json:"score"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(block), &reply); err != nil {
		return Result{}, false
	}
	return Result{Score: clampScore(reply.Score), Reasoning: strings.TrimSpace(reply.Reasoning)}, true
}

// validateScoreReply checks the JSON block against scoreReplySchema.
func validateScoreReply(block string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(scoreReplySchema),
		gojsonschema.NewStringLoader(block),
	)
	if err != nil {
		return err
	}
	if !result.Valid() {
		return &ParseError{Raw: block}
	}
	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
