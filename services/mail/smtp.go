package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	textTemplate "text/template"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// SMTPMailer delivers templated mail over SMTP via go-mail. Templates are
// embedded; every template ships an HTML and a plain-text body.
type SMTPMailer struct {
	config        *config.MailConfig
	client        *mail.Client
	htmlTemplates *htmlTemplate.Template
	textTemplates *textTemplate.Template
	logger        *logging.Service
}

func NewSMTPMailer(cfg *config.MailConfig, logger *logging.Service) (*SMTPMailer, error) {
	if logger != nil {
		logger.Info("initializing SMTP mailer",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("encryption", cfg.Encryption),
			zap.String("from_address", cfg.FromAddress))
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("RIDEWAY_MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create mail client",
				zap.Error(err),
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port))
		}
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	htmlTemplates, err := htmlTemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML templates: %w", err)
	}

	textTemplates, err := textTemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}

	return &SMTPMailer{
		config:        cfg,
		client:        client,
		htmlTemplates: htmlTemplates,
		textTemplates: textTemplates,
		logger:        logger,
	}, nil
}

func (s *SMTPMailer) newMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}

	return message, nil
}

func (s *SMTPMailer) SendTemplate(templateName string, to []string, subject string, data map[string]any) error {
	if s.logger != nil {
		s.logger.Info("sending template email",
			zap.String("template", templateName),
			zap.Strings("recipients", to),
			zap.String("subject", subject))
	}

	message, err := s.newMessage()
	if err != nil {
		return err
	}

	if err := message.To(to...); err != nil {
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}

	message.Subject(subject)

	if err := s.renderTemplate(templateName, data, message); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to render template",
				zap.Error(err),
				zap.String("template", templateName))
		}
		return fmt.Errorf("failed to render template: %w", err)
	}

	start := time.Now()
	if err := s.client.DialAndSend(message); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send email",
				zap.Error(err),
				zap.Duration("attempt_duration", time.Since(start)))
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("email sent successfully", zap.Duration("send_duration", time.Since(start)))
	}
	return nil
}

func (s *SMTPMailer) renderTemplate(templateName string, data map[string]any, message *mail.Msg) error {
	htmlTmpl := s.htmlTemplates.Lookup(templateName + ".html")
	textTmpl := s.textTemplates.Lookup(templateName + ".txt")

	if htmlTmpl == nil && textTmpl == nil {
		return fmt.Errorf("no template found with name: %s", templateName)
	}

	if textTmpl != nil {
		var buf bytes.Buffer
		if err := textTmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute text template: %w", err)
		}
		message.SetBodyString(mail.TypeTextPlain, buf.String())
	}

	if htmlTmpl != nil {
		var buf bytes.Buffer
		if err := htmlTmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute HTML template: %w", err)
		}
		if textTmpl != nil {
			message.AddAlternativeString(mail.TypeTextHTML, buf.String())
		} else {
			message.SetBodyString(mail.TypeTextHTML, buf.String())
		}
	}

	return nil
}
