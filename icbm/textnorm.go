package icbm

import (
	"bytes"

	"golang.org/x/net/html"
)

// NormalizeText strips HTML markup from an inbound message body, the way
// legacy ICQ/AIM clients wrap normal and away-message text in an
// "<HTML><BODY ...>...</BODY></HTML>" fragment (spec.md §4.4). Plain-text
// bodies (no markup) pass through unchanged -- the tokenizer degrades to a
// single TextToken covering the whole input.
//
// Grounded on the teacher's textFromChatMsgBlob (foodgroup/chat.go), which
// tokenizes a chat message TLV the same way; this accumulates every text
// token instead of returning only the first, since ICBM bodies can carry
// several text runs split across inline tags (<BR>, <FONT>, ...).
func NormalizeText(raw []byte) string {
	tok := html.NewTokenizer(bytes.NewReader(raw))
	var out bytes.Buffer
	for {
		switch tok.Next() {
		case html.TextToken:
			out.Write(tok.Text())
		case html.ErrorToken:
			return out.String()
		}
	}
}
