package mail

import (
	"bytes"
	"html/template"
	"time"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: sans-serif; max-width: 400px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #1E293B;">Research Admin</h2>
  <p style="color: #64748B;">Your login verification code:</p>
  <div style="background: #F8FAFC; border: 1px solid #E2E8F0; border-radius: 8px; padding: 24px; text-align: center; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #F47920;">{{.Code}}</span>
  </div>
  <p style="color: #94A3B8; font-size: 14px;">This code expires in {{.Minutes}} minutes.</p>
</div>`))

// OTPMessage builds the login code email.
func OTPMessage(to, code string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Code    string
		Minutes int
	}{code, int(ttl.Minutes())})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Admin Login OTP Code", HTML: buf.String()}, nil
}

// InquiryNotice is what the admin sees about a contact submission.
type InquiryNotice struct {
	ID         string
	Purpose    string
	Name       string
	Email      string
	Subject    string
	Message    string
	PageURL    string
	ReceivedAt time.Time
}

var inquiryTemplate = template.Must(template.New("inquiry").Parse(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #1E293B; margin-bottom: 24px;">New Contact Inquiry</h2>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 8px 12px; color: #64748B; width: 100px;">Purpose</td><td style="padding: 8px 12px;">{{.Purpose}}</td></tr>
    <tr><td style="padding: 8px 12px; color: #64748B;">Name</td><td style="padding: 8px 12px;">{{.Name}}</td></tr>
    <tr><td style="padding: 8px 12px; color: #64748B;">Email</td><td style="padding: 8px 12px;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    {{if .Subject}}<tr><td style="padding: 8px 12px; color: #64748B;">Subject</td><td style="padding: 8px 12px;">{{.Subject}}</td></tr>{{end}}
    {{if .PageURL}}<tr><td style="padding: 8px 12px; color: #64748B;">Page</td><td style="padding: 8px 12px;">{{.PageURL}}</td></tr>{{end}}
  </table>
  <div style="margin-top: 20px; padding: 16px; background: #F8FAFC; border: 1px solid #E2E8F0; border-radius: 8px;">
    <p style="white-space: pre-wrap; margin: 0;">{{.Message}}</p>
  </div>
  <p style="color: #94A3B8; font-size: 12px; margin-top: 24px;">ID: {{.ID}} · {{.ReceivedAt.UTC.Format "2006-01-02T15:04:05Z07:00"}}</p>
</div>`))

// InquiryMessage builds the admin notification for a stored inquiry. User input is HTML-escaped.
func InquiryMessage(to string, n InquiryNotice) (Message, error) {
	var buf bytes.Buffer
	if err := inquiryTemplate.Execute(&buf, n); err != nil {
		return Message{}, err
	}
	subject := "[Contact] " + n.Subject
	if n.Subject == "" {
		subject = "[Contact] " + n.Name
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
