package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/menofiaacademy/academy-site/internal/registration"
)

// Notifier defines the interface for announcing a registration to staff
type Notifier interface {
	// Notify sends one notification for the given registration
	Notify(ctx context.Context, data registration.Data) error
}

// Message is a rendered staff notification.
type Message struct {
	Subject string
	HTML    string
	ReplyTo string
}

// formatMessage renders a registration as an e-mail.
func formatMessage(data registration.Data) Message {
	data = data.Normalize()

	var b strings.Builder
	b.WriteString(`<div dir="rtl">`)
	b.WriteString("<h2>تسجيل جديد</h2>\n<ul>\n")
	writeRow(&b, "الدورة", data.CourseTitle)
	writeRow(&b, "الاسم", data.Name)
	writeRow(&b, "الهاتف", data.Phone)
	writeRow(&b, "البريد الإلكتروني", data.Email)
	if data.DiscountCode != "" {
		writeRow(&b, "كود الخصم", data.DiscountCode)
	}
	b.WriteString("</ul>\n</div>")

	return Message{
		Subject: fmt.Sprintf("تسجيل جديد: %s", data.CourseTitle),
		HTML:    b.String(),
		ReplyTo: data.Email,
	}
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<li><strong>%s:</strong> %s</li>\n", label, html.EscapeString(value))
}
