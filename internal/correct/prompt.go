package correct

import (
	"fmt"
	"os"
	"strings"
)

// DefaultInstruction constrains the model to grammar, spelling, and style
// edits with content, structure, and terminology preserved. It is sent as
// the system prompt for every paragraph.
const DefaultInstruction = `You are a professional academic copy editor. Improve grammar, spelling, conciseness, and style while preserving the original meaning, terminology, and content. The goal is clear, concise text that communicates exactly what it set out to communicate.

Follow these rules strictly:
1) Never change terminology or the primary content of the text.
2) Do not change citations or footnote markers. Leave them intact.
3) Edit to academic writing standards in American English.
4) If a sentence consists mostly of citations or references (parentheses or brackets), leave that sentence intact.
5) If the text is too short to copy edit, return it unchanged without any warning.
6) Do NOT merge, split, or reorder paragraphs. Preserve the original paragraph.
7) Return only the corrected text, with no explanations, questions, warnings, comments, or new paragraph breaks.`

// ResolveInstruction picks the editing instruction: inline config text wins,
// then an instruction file, then the built-in default.
func ResolveInstruction(inline, file string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return strings.TrimSpace(inline), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read instruction file: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("instruction file %s is empty", file)
		}
		return text, nil
	}
	return DefaultInstruction, nil
}
