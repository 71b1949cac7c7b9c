package domain

import "time"

// Code is an issued login code (otp_codes table). Only the hash of the code is stored.
type Code struct {
	ID        string
	CodeHash  string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Live reports whether the code can still be consumed at now.
func (c *Code) Live(now time.Time) bool {
	return !c.Used && c.ExpiresAt.After(now)
}
