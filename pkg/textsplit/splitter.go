// Package textsplit splits long text into overlapping chunks for embedding.
// It prefers to break on paragraph, then line, then word boundaries, falling
// back to hard character cuts only when a single word exceeds the chunk size.
package textsplit

import "strings"

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Split breaks text into chunks of at most chunkSize characters with
// chunkOverlap characters carried over between adjacent chunks. Whitespace-only
// chunks are dropped.
func (s *Splitter) Split(text string) []string {
	return s.split(text, defaultSeparators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	sep := separators[len(separators)-1]
	rest := separators
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			return s.mergePieces(splitOn(text, sep), sep, rest)
		}
	}
	return s.mergePieces(splitOn(text, sep), sep, rest)
}

// mergePieces greedily packs pieces into chunks up to chunkSize, recursing
// with finer separators for any piece that alone exceeds the limit.
func (s *Splitter) mergePieces(pieces []string, sep string, finer []string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, piece := range pieces {
		if len(piece) > s.chunkSize {
			flush()
			if len(finer) > 0 {
				chunks = append(chunks, s.split(piece, finer)...)
			} else {
				chunks = append(chunks, s.hardSplit(piece)...)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(sep)+len(piece) > s.chunkSize {
			tail := overlapTail(current.String(), s.chunkOverlap)
			flush()
			current.WriteString(tail)
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}
	flush()

	return chunks
}

func (s *Splitter) hardSplit(text string) []string {
	var chunks []string
	step := s.chunkSize - s.chunkOverlap
	for start := 0; start < len(text); start += step {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

func overlapTail(text string, overlap int) string {
	if overlap <= 0 || len(text) <= overlap {
		return ""
	}
	tail := text[len(text)-overlap:]
	// Trim to a word boundary so the overlap never starts mid-word.
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 {
		tail = tail[idx+1:]
	}
	return tail
}

func splitOn(text, sep string) []string {
	if sep == "" {
		return []string{text}
	}
	return strings.Split(text, sep)
}
