package domain

import "time"

// Purposes accepted on contact submissions.
const (
	PurposeGeneral       = "general"
	PurposeCollaboration = "collaboration"
	PurposeSpeaking      = "speaking"
)

// ValidPurpose reports whether p is one of the known purposes.
func ValidPurpose(p string) bool {
	switch p {
	case PurposeGeneral, PurposeCollaboration, PurposeSpeaking:
		return true
	}
	return false
}

// Inquiry is a contact form submission.
type Inquiry struct {
	ID        string    `json:"id"`
	Purpose   string    `json:"purpose"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Slug      string    `json:"slug,omitempty"`
	PageURL   string    `json:"pageUrl,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
