// Package chunker splits normalized text into overlapping retrieval units.
package chunker

import (
	"regexp"
	"strings"
)

// Paragraph boundaries: blank lines, or runs of 2+ periods that bad PDF
// extractions leave behind as pseudo-separators.
var paragraphRe = regexp.MustCompile(`\n\s*\n|\.{2,}`)

// HybridChunker implements the two-phase strategy: greedily merge
// consecutive paragraphs into blocks of at most chunkSize words, then
// emit overlapping word windows over each block.
type HybridChunker struct {
	chunkSize int
	overlap   int
}

// NewHybridChunker clamps parameters to sane values: chunkSize at least 1,
// overlap non-negative and strictly smaller than chunkSize.
func NewHybridChunker(chunkSize, overlap int) *HybridChunker {
	if chunkSize < 1 {
		chunkSize = 700
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &HybridChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk materializes all chunks for text. Empty input yields nil.
func (c *HybridChunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	for _, block := range c.mergeParagraphs(splitParagraphs(text)) {
		chunks = append(chunks, c.window(block)...)
	}
	return chunks
}

// splitParagraphs splits on paragraph boundaries, dropping blanks.
func splitParagraphs(text string) []string {
	parts := paragraphRe.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// mergeParagraphs greedily accumulates consecutive paragraphs into blocks
// while the combined word count stays within chunkSize. A paragraph larger
// than chunkSize becomes its own oversized block and is windowed later.
func (c *HybridChunker) mergeParagraphs(paragraphs []string) []string {
	var blocks []string
	var buf string

	for _, p := range paragraphs {
		if buf == "" {
			buf = p
			continue
		}
		if wordCount(buf)+wordCount(p) <= c.chunkSize {
			buf += " " + p
		} else {
			blocks = append(blocks, buf)
			buf = p
		}
	}
	if buf != "" {
		blocks = append(blocks, buf)
	}
	return blocks
}

// window emits the block whole when it fits, otherwise overlapping
// chunkSize-word windows advancing by chunkSize-overlap. The last window
// may be shorter and is kept.
func (c *HybridChunker) window(block string) []string {
	words := strings.Fields(block)
	if len(words) <= c.chunkSize {
		return []string{block}
	}

	step := c.chunkSize - c.overlap
	var out []string
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
