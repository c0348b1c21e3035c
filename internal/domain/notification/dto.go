package notification

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=998"`
	Body    string `json:"body" validate:"required"`
	IsHTML  bool   `json:"isHtml"`
}

func (r *SendEmailRequest) Validate() error {
	r.To = strings.TrimSpace(r.To)
	return validator.Struct(r)
}

type SendWhatsAppRequest struct {
	To           string  `json:"to" validate:"required,phone"`
	Message      string  `json:"message" validate:"required,max=4096"`
	TemplateName *string `json:"templateName,omitempty"`
}

func (r *SendWhatsAppRequest) Validate() error {
	return validator.Struct(r)
}
