package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "French", LanguageName(language.French))
	assert.Equal(t, "Korean", LanguageName(language.MustParse("ko")))
	assert.Contains(t, systemPrompt(language.German), "into German")
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "1\n00:00:01,000 --> 00:00:02,000\nBonjour\n", want: "1\n00:00:01,000 --> 00:00:02,000\nBonjour"},
		{name: "srt fence", input: "```srt\n1\n00:00:01,000 --> 00:00:02,000\nBonjour\n```", want: "1\n00:00:01,000 --> 00:00:02,000\nBonjour"},
		{name: "bare fence", input: "  ```\nBonjour\n```  \n", want: "Bonjour"},
		{name: "unterminated fence", input: "```srt\nBonjour", want: "Bonjour"},
		{name: "single line fence", input: "```Bonjour```", want: "Bonjour"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.input))
		})
	}
}
