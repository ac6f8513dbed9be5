package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Youngzheimer/subtrans/internal/subtitle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func makeCues(texts ...string) []subtitle.Cue {
	cues := make([]subtitle.Cue, len(texts))
	for i, text := range texts {
		cues[i] = subtitle.Cue{
			Index: i + 1,
			Start: time.Duration(i) * 2 * time.Second,
			End:   time.Duration(i)*2*time.Second + 1500*time.Millisecond,
			Lines: []string{text},
		}
	}
	return cues
}

// chunkRecorder upper-cases every cue and records how many cues each
// request carried. truncate drops the last cue of requests larger than
// its value.
type chunkRecorder struct {
	mu       sync.Mutex
	sizes    []int
	truncate int
}

func (c *chunkRecorder) Translate(ctx context.Context, text string, target language.Tag) (string, error) {
	cues, err := subtitle.Parse(text)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.sizes = append(c.sizes, len(cues))
	c.mu.Unlock()

	for i := range cues {
		cues[i] = cues[i].WithText(strings.ToUpper(cues[i].Text()))
	}
	if c.truncate > 0 && len(cues) > c.truncate {
		cues = cues[:len(cues)-1]
	}
	return subtitle.Serialize(cues), nil
}

func TestTranslateCues_Chunks(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("line %d", i+1)
	}
	source := makeCues(texts...)
	tr := &chunkRecorder{}
	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{}, tr, language.French, WithBatchSize(10))

	got, err := o.translateCues(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 5}, tr.sizes)
	require.Len(t, got, 25)
	for i, c := range got {
		assert.Equal(t, i+1, c.Index)
		assert.Equal(t, source[i].Start, c.Start)
		assert.Equal(t, source[i].End, c.End)
		assert.Equal(t, []string{fmt.Sprintf("LINE %d", i+1)}, c.Lines)
	}
}

func TestTranslateCues_HalvesOnMismatch(t *testing.T) {
	source := makeCues("one", "two", "three", "four")
	tr := &chunkRecorder{truncate: 2}
	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{}, tr, language.French, WithBatchSize(4))

	got, err := o.translateCues(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 2}, tr.sizes)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"ONE"}, got[0].Lines)
	assert.Equal(t, []string{"FOUR"}, got[3].Lines)
	assert.Equal(t, source[3].Start, got[3].Start)
}

func TestTranslateCues_OutOfOrderSource(t *testing.T) {
	ordered := makeCues("one", "two", "three", "four", "five")
	source := []subtitle.Cue{ordered[3], ordered[0], ordered[4], ordered[2], ordered[1]}
	tr := &chunkRecorder{}
	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{}, tr, language.French, WithBatchSize(2))

	got, err := o.translateCues(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, tr.sizes)
	require.Len(t, got, 5)
	for i, c := range got {
		assert.Equal(t, i+1, c.Index)
		assert.Equal(t, ordered[i].Start, c.Start)
		assert.Equal(t, []string{strings.ToUpper(ordered[i].Text())}, c.Lines)
	}
}

func TestTranslateCues_SingleCueFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{name: "plain text", response: "Bonjour le monde", want: []string{"Bonjour le monde"}},
		{
			name:     "several cues",
			response: "1\n00:00:00,000 --> 00:00:01,000\nBonjour\n\n2\n00:00:01,000 --> 00:00:02,000\nle monde\n",
			want:     []string{"Bonjour", "le monde"},
		},
		{name: "empty", response: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := makeCues("Hello world")
			o := NewOrchestrator(&fakeProber{}, &fakeExtractor{},
				translateFunc(func(ctx context.Context, text string, target language.Tag) (string, error) {
					return tt.response, nil
				}),
				language.French, WithBatchSize(1))

			got, err := o.translateCues(context.Background(), source)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Lines)
			assert.Equal(t, source[0].End, got[0].End)
		})
	}
}

func TestTranslateCues_ErrorStops(t *testing.T) {
	calls := 0
	o := NewOrchestrator(&fakeProber{}, &fakeExtractor{},
		translateFunc(func(ctx context.Context, text string, target language.Tag) (string, error) {
			calls++
			return "", fmt.Errorf("backend down")
		}),
		language.French, WithBatchSize(2))

	_, err := o.translateCues(context.Background(), makeCues("a", "b", "c", "d"))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
