package utils

// SplitText breaks text into rune-based chunks of at most chunkSize, with
// the trailing overlap runes of each chunk repeated at the head of the next
// so embedding windows keep boundary context.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	runes := []rune(text)
	total := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// Degenerate overlap would loop forever.
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < total; i += step {
		end := i + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == total {
			break
		}
	}
	return chunks
}
