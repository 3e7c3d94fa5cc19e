package utils

import (
	"fmt"
	"lms/config"
	"net/smtp"
	"strings"
)

// SendEmail delivers an HTML mail over SMTP
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: BÜ-LMS <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.content h2 { color: #00004D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.otp-code { text-align: center; color: #d7b56d; font-size: 40px; letter-spacing: 8px; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>BÜ-LMS</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				Bu e-posta BÜ-LMS tarafından otomatik gönderilmiştir.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendOTPEmail mails a verification code for registration or password reset
func SendOTPEmail(otp, email, subjectText string) error {
	subject := fmt.Sprintf("LMS %s Kodu", subjectText)
	body := fmt.Sprintf(`
		<p>İşleminiz için doğrulama kodunuz:</p>
		<h1 class="otp-code">%s</h1>
		<p>Bu kodu kimseyle paylaşmayın. Kod 5 dakika geçerlidir.</p>
	`, otp)

	return SendEmail([]string{email}, subject, getEmailTemplate(subjectText, body))
}

// SendWelcomeEmail greets a newly registered student. Fire-and-forget.
func SendWelcomeEmail(email, name string) {
	subject := "BÜ-LMS'e Hoş Geldiniz"
	body := fmt.Sprintf(`
		<p>Merhaba %s,</p>
		<p>Kaydınız başarıyla oluşturuldu. Haftalık içeriklere artık erişebilirsiniz.</p>
		<p>Başarılar dileriz!</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Kayıt Tamamlandı", body))
}
