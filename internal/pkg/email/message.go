package email

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header carries the envelope fields that do not come from the Message itself.
type Header struct {
	From      string
	FromName  string
	Date      time.Time
	MessageID string
}

// BuildMessage renders headers and body as an RFC 5322 message with LF or CRLF
// line endings; EncodeData normalises them.
func BuildMessage(h Header, msg Message) string {
	if h.MessageID == "" {
		h.MessageID = fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(h.From))
	}

	contentType := `text/plain; charset="UTF-8"`
	if msg.IsHTML {
		contentType = `text/html; charset="UTF-8"`
	}

	from := h.From
	if h.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", h.FromName), h.From)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", h.Date.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", h.MessageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}

// EncodeData converts a message into the bytes sent after DATA: CRLF line
// endings, a second dot prepended to every line starting with '.', and a
// terminating line holding a single dot.
func EncodeData(message string) []byte {
	normalized := strings.ReplaceAll(message, "\r\n", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")

	var buf bytes.Buffer
	for _, line := range strings.Split(normalized, "\n") {
		if strings.HasPrefix(line, ".") {
			buf.WriteByte('.')
		}
		buf.WriteString(line)
		buf.WriteString("\r\n")
	}
	buf.WriteString(".\r\n")
	return buf.Bytes()
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return strings.Trim(addr[i+1:], "> ")
	}
	return "localhost"
}
