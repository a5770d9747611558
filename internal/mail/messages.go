package mail

import "fmt"

// SendOTPCode delivers the registration verification code as plain text.
func SendOTPCode(sender MailSender, toEmail string, otpCode string) error {
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Your OTP Code",
		Body:    fmt.Sprintf("Your OTP code is: %s", otpCode),
	})
}
