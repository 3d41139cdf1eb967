package discord

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxMessageRunes is Discord's limit on a message's content.
	maxMessageRunes = 2000

	codeFence = "```"
)

// splitMessage breaks text into messages of at most limit runes at line
// boundaries. A code block cut in two is closed at the end of one message and
// reopened at the start of the next.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	// room for "\n```" closing an open block and "```\n" reopening it
	fenceCost := len(codeFence) + 1
	maxLine := limit - 2*fenceCost

	var (
		chunks  []string
		cur     strings.Builder
		curLen  int
		inFence bool
	)
	write := func(line string, n int) {
		if curLen > 0 {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
	}
	flush := func() {
		if inFence {
			write(codeFence, len(codeFence))
		}
		chunks = append(chunks, cur.String())
		cur.Reset()
		curLen = 0
		if inFence {
			write(codeFence, len(codeFence))
		}
	}

	for _, line := range splitLongLines(strings.Split(text, "\n"), maxLine) {
		n := utf8.RuneCountInString(line)
		isFence := strings.HasPrefix(line, codeFence)

		need := n
		if curLen > 0 {
			need++
		}
		// an open block after this line must still fit its closing fence
		if inFence != isFence {
			need += fenceCost
		}
		if curLen > 0 && curLen+need > limit {
			flush()
		}

		write(line, n)
		if isFence {
			inFence = !inFence
		}
	}
	if curLen > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func splitLongLines(lines []string, max int) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		for utf8.RuneCountInString(line) > max {
			runes := []rune(line)
			out = append(out, string(runes[:max]))
			line = string(runes[max:])
		}
		out = append(out, line)
	}
	return out
}
