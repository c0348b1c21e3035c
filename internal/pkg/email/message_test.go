package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage_Headers(t *testing.T) {
	date := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	msg := BuildMessage(Header{
		From:      "hr@example.com",
		FromName:  "HR Team",
		Date:      date,
		MessageID: "<fixed@example.com>",
	}, Message{To: "jane@example.com", Subject: "Check-in recorded", Body: "Hello"})

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found)
	assert.Equal(t, "Hello", body)

	for _, want := range []string{
		"From: HR Team <hr@example.com>",
		"To: jane@example.com",
		"Subject: Check-in recorded",
		"Date: Mon, 15 Jan 2024 09:30:00 +0000",
		"Message-ID: <fixed@example.com>",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	} {
		assert.Contains(t, head, want)
	}
}

func TestBuildMessage_HTMLAndGeneratedID(t *testing.T) {
	msg := BuildMessage(Header{From: "hr@example.com", Date: time.Now()},
		Message{To: "a@b.co", Subject: "S", Body: "<p>x</p>", IsHTML: true})

	assert.Contains(t, msg, `Content-Type: text/html; charset="UTF-8"`)
	assert.Contains(t, msg, "@example.com>\r\n")
	assert.Contains(t, msg, "From: hr@example.com\r\n")
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	msg := BuildMessage(Header{From: "hr@example.com", Date: time.Now()},
		Message{To: "a@b.co", Subject: "Présence", Body: "x"})

	assert.Contains(t, msg, "Subject: =?UTF-8?q?")
}

func TestEncodeData_DotStuffing(t *testing.T) {
	payload := string(EncodeData("Subject: x\r\n\r\nfirst line\n.leading-dot\n..two\nlast"))

	assert.Contains(t, payload, "\r\n..leading-dot\r\n")
	assert.Contains(t, payload, "\r\n...two\r\n")
	assert.True(t, strings.HasSuffix(payload, "\r\nlast\r\n.\r\n"))
	assert.NotContains(t, strings.ReplaceAll(payload, "\r\n", ""), "\n")
}

func TestEncodeData_LoneDotBody(t *testing.T) {
	payload := string(EncodeData("."))
	assert.Equal(t, "..\r\n.\r\n", payload)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("hr@example.com"))
	assert.Equal(t, "localhost", domainOf("nobody"))
}
