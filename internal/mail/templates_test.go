package mail

import (
	"strings"
	"testing"
	"time"
)

func TestOTPMessage(t *testing.T) {
	msg, err := OTPMessage("admin@example.com", "482913", 5*time.Minute)
	if err != nil {
		t.Fatalf("OTPMessage: %v", err)
	}
	if msg.To != "admin@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Admin Login OTP Code" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "482913") {
		t.Error("HTML should contain the code")
	}
	if !strings.Contains(msg.HTML, "expires in 5 minutes") {
		t.Error("HTML should state the lifetime")
	}
}

func TestInquiryMessage_EscapesUserInput(t *testing.T) {
	msg, err := InquiryMessage("admin@example.com", InquiryNotice{
		ID:         "01J",
		Name:       "<script>alert(1)</script>",
		Email:      "jo@x.com",
		Message:    "Hello <b>there</b>",
		Subject:    "Collab",
		ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InquiryMessage: %v", err)
	}
	if strings.Contains(msg.HTML, "<script>") || strings.Contains(msg.HTML, "<b>there</b>") {
		t.Error("user input must be escaped")
	}
	if !strings.Contains(msg.HTML, "&lt;script&gt;") {
		t.Error("escaped name missing")
	}
	if msg.Subject != "[Contact] Collab" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "2026-01-02T03:04:05Z") {
		t.Error("timestamp missing")
	}
}

func TestInquiryMessage_SubjectFallsBackToName(t *testing.T) {
	msg, err := InquiryMessage("admin@example.com", InquiryNotice{Name: "Jo", Email: "jo@x.com", Message: "Hello there"})
	if err != nil {
		t.Fatalf("InquiryMessage: %v", err)
	}
	if msg.Subject != "[Contact] Jo" {
		t.Errorf("Subject = %q", msg.Subject)
	}
}
