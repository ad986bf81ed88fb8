package ai

import (
	"context"
	"fmt"
	"strings"

	"statement-agent/internal/core"
)

// Temperature 0: OCR must be reproducible, transcription only.
const ocrTemperature = 0

const ocrPrompt = `You are an OCR engine. Transcribe ALL text visible in this image of a bank statement page, exactly as printed.
Rules:
1. Output the raw text only. Do NOT interpret, summarize, translate, or reformat numbers.
2. Preserve the reading order of rows and columns; separate columns with tabs.
3. Keep Vietnamese diacritics exactly as printed.
4. If a character is illegible, write '?'.`

// Transcribe runs OCR over each image in order and concatenates the page
// texts. One call per image keeps page boundaries intact.
func (a *Agent) Transcribe(ctx context.Context, images []core.Image) (string, error) {
	var pages []string
	for i, img := range images {
		text, err := a.plain(ctx, userMessage(ocrPrompt, []core.Image{img}), ocrTemperature)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return strings.Join(pages, "\n\n"), nil
}
