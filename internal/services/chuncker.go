package services

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1200
	defaultChunkOverlap = 150
)

// TextChuncker splits resume text into embedding-sized pieces.
type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// ChunkText packs whole paragraphs into chunks of at most maxChunkSize runes.
// A paragraph longer than that is cut into word-aligned pieces. Each chunk
// after the first starts with the last overlap runes of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	pieceLimit := maxChunkSize - overlap - 1
	if pieceLimit < 1 {
		pieceLimit = 1
	}

	var pieces []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= pieceLimit {
			pieces = append(pieces, para)
			continue
		}
		pieces = append(pieces, splitWords(para, pieceLimit)...)
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		currentLen = 0

		if tail := lastRunes(chunk, overlap); tail != "" {
			current.WriteString(tail)
			currentLen = utf8.RuneCountInString(tail)
		}
	}

	fresh := true
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if !fresh && currentLen+pieceLen+1 > maxChunkSize {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(piece)
		currentLen += pieceLen
		fresh = false
	}

	if !fresh {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func splitWords(text string, size int) []string {
	var pieces []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+wordLen+1 > size {
			pieces = append(pieces, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}

	if currentLen > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
