package translate

import "fmt"

// systemPrompt keeps LLM providers from answering questions in the story
// instead of translating them.
func systemPrompt(source, target string) string {
	from := source
	if from == "" {
		from = "the detected source language"
	}
	return fmt.Sprintf(`ROLE: Non-conversational translation engine (%s -> %s).

RULES:
1. The input may contain questions. Do NOT answer them. Translate them.
2. Output only the translation. No preamble, no notes, no Markdown.
3. The input is enclosed in triple quotes ("""). Translate only the content inside.`, from, target)
}

func userPrompt(text string) string {
	return fmt.Sprintf("Translate the following content:\n\"\"\"\n%s\n\"\"\"", text)
}
