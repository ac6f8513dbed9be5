package translator

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName returns the English name of tag ("French" for fr), falling
// back to the tag itself.
func LanguageName(tag language.Tag) string {
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}

func systemPrompt(target language.Tag) string {
	name := LanguageName(target)

	var prompt strings.Builder
	prompt.WriteString("You are an expert translator specializing in subtitles for movies, TV, and animation. ")
	prompt.WriteString(fmt.Sprintf("Translate the provided SRT subtitle content into %s so that it reads as if it were originally written in %s.\n\n", name, name))

	prompt.WriteString("Follow these instructions carefully:\n")
	prompt.WriteString("1. Natural translation: fluent and natural, never stiff or literal.\n")
	prompt.WriteString("2. Completeness: translate every cue from beginning to end. Do not omit, merge or split cues.\n")
	prompt.WriteString("3. Preserve the SRT structure exactly: the sequence numbers, the timestamps " +
		"(00:00:01,000 --> 00:00:03,500), formatting tags such as <i>, <b> and <font color=\"#RRGGBB\">, " +
		"and the blank line between cues.\n")
	prompt.WriteString("4. Output only SRT: no explanations, no notes, no Markdown code fences.\n")

	return prompt.String()
}

func userPrompt(sourceText string) string {
	return sourceText
}

// CleanResponse strips a Markdown code fence wrapped around the response.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// drop the opening fence line, including any language hint
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
