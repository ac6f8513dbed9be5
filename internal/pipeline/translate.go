package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/subtitle"
	"github.com/Youngzheimer/subtrans/pkg/log"
)

// translateCues translates cues chunk by chunk in start time order and
// returns them renumbered, with the source timing kept.
func (o *Orchestrator) translateCues(ctx context.Context, cues []subtitle.Cue) ([]subtitle.Cue, error) {
	cues = subtitle.Renumber(cues)
	chunks := subtitle.Chunk(cues, o.batchSize)
	out := make([]subtitle.Cue, 0, len(cues))
	for i, chunk := range chunks {
		translated, err := o.translateChunk(ctx, chunk)
		if err != nil {
			var e *apperr.Error
			if errors.As(err, &e) {
				e.WithContext("chunk", i+1)
			}
			return nil, err
		}
		out = append(out, translated...)
		log.Debug("Translated chunk %d/%d (%d cues)", i+1, len(chunks), len(chunk))
	}
	return subtitle.Renumber(out), nil
}

// translateChunk sends one chunk. When the response does not carry one cue
// per source cue the chunk is halved and each half retried, down to single
// cues.
func (o *Orchestrator) translateChunk(ctx context.Context, chunk []subtitle.Cue) ([]subtitle.Cue, error) {
	response, err := o.translator.Translate(ctx, subtitle.Serialize(chunk), o.target)
	if err != nil {
		return nil, err
	}

	parsed, parseErr := subtitle.Parse(response)
	if parseErr == nil && len(parsed) == len(chunk) {
		return align(chunk, parsed), nil
	}

	if len(chunk) == 1 {
		return []subtitle.Cue{chunk[0].WithText(singleCueText(response, parsed, parseErr))}, nil
	}

	if parseErr != nil {
		log.Warn("Response for %d cues is not valid SRT, splitting: %v", len(chunk), parseErr)
	} else {
		log.Warn("Response has %d cues for %d sent, splitting", len(parsed), len(chunk))
	}

	mid := len(chunk) / 2
	left, err := o.translateChunk(ctx, chunk[:mid])
	if err != nil {
		return nil, err
	}
	right, err := o.translateChunk(ctx, chunk[mid:])
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// align copies translated text onto the source cues by position.
func align(source, translated []subtitle.Cue) []subtitle.Cue {
	out := make([]subtitle.Cue, len(source))
	for i, src := range source {
		src.Lines = translated[i].Lines
		out[i] = src
	}
	return out
}

// singleCueText picks the text for a one-cue request whose response did not
// come back as exactly one cue.
func singleCueText(response string, parsed []subtitle.Cue, parseErr error) string {
	if parseErr != nil || len(parsed) == 0 {
		return response
	}
	texts := make([]string, 0, len(parsed))
	for _, c := range parsed {
		texts = append(texts, c.Text())
	}
	return strings.Join(texts, "\n")
}
