package session

import (
	"context"
	"fmt"
	"regexp"
)

// OTPProvider supplies the security code the CRM emails out during
// login. Implementations range from "a human types it in" to polling a
// mailbox.
type OTPProvider interface {
	WaitForCode(ctx context.Context) (string, error)
}

// StaticOTP returns a pre-known code, useful in tests and for accounts
// with a fixed test code.
type StaticOTP string

func (s StaticOTP) WaitForCode(ctx context.Context) (string, error) {
	return string(s), nil
}

// OTPFunc adapts a function into an OTPProvider.
type OTPFunc func(ctx context.Context) (string, error)

func (f OTPFunc) WaitForCode(ctx context.Context) (string, error) {
	return f(ctx)
}

var otpCodeRegex = regexp.MustCompile(`\b(\d{6})\b`)

// ExtractCode pulls the 6-digit security code out of the body of the
// CRM's "Login security code" email.
func ExtractCode(emailBody string) (string, error) {
	groups := otpCodeRegex.FindStringSubmatch(emailBody)
	if len(groups) < 2 {
		return "", fmt.Errorf("no 6-digit security code found in email body")
	}
	return groups[1], nil
}
