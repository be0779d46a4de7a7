package services

import (
	"fmt"

	"fiber-erp/config"
	"fiber-erp/models"

	"gopkg.in/gomail.v2"
)

// MailService kirim notifikasi email ke approver.
// Kalau SMTP tidak dikonfigurasi, semua kirim jadi no-op.
type MailService struct{}

func NewMailService() *MailService {
	return &MailService{}
}

func (s *MailService) NotifyOpnamePending(record *models.StockOpname, material *models.Material) {
	if config.SMTPHost == "" || len(config.OpnameMailTo) == 0 {
		return
	}

	subject := "📋 Stock Opname " + record.Code + " needs approval"
	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Stock opname pending approval</h3>
				<p>Code: <strong>%s</strong></p>
				<p>Material: <strong>%s</strong></p>
				<p>System qty: %.4f, physical qty: %.4f, variance: %.2f%%</p>
				<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
			</body>
		</html>
	`, record.Code, material.MaterialCode, record.SystemQty, record.PhysicalQty, record.VariancePct)

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", config.OpnameMailTo...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		fmt.Println("❌ Gagal mengirim email:", err)
	}
}
