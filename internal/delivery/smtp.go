package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/config"
)

const implicitTLSPort = 465

type SMTP struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTP(cfg *config.EmailConfig, _ ...Option) *SMTP {
	return &SMTP{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.From,
	}
}

func (s *SMTP) Name() string {
	return config.ProviderSMTP
}

func (s *SMTP) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if s.host == "" || s.user == "" || s.password == "" {
		return nil, configurationError(config.ProviderSMTP, "SMTP_HOST, SMTP_USER and SMTP_PASSWORD must be set")
	}

	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return nil, configurationError(config.ProviderSMTP, fmt.Sprintf("EMAIL_FROM %q is not a valid address", s.from))
	}

	body, messageID, err := buildMIMEMessage(from, msg, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build smtp message: %w", err)
	}

	if err := s.deliver(ctx, from.Address, msg.To, body); err != nil {
		slog.WarnContext(ctx, "failed to deliver email over smtp",
			slog.String("host", s.host),
			slog.String("to", msg.To),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	slog.InfoContext(ctx, "email delivered",
		slog.String("provider", config.ProviderSMTP),
		slog.String("message_id", messageID),
		slog.String("to", msg.To),
	)
	return &Receipt{MessageID: messageID, Provider: config.ProviderSMTP}, nil
}

func (s *SMTP) deliver(ctx context.Context, from, to string, body []byte) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	conn, err := s.dial(ctx, addr)
	if err != nil {
		return transportError(config.ProviderSMTP, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return transportError(config.ProviderSMTP, err)
	}
	defer client.Close()

	if s.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return transportError(config.ProviderSMTP, fmt.Errorf("starttls: %w", err))
			}
		}
	}

	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			return smtpReplyError(err)
		}
	}

	if err := client.Mail(from); err != nil {
		return smtpReplyError(err)
	}
	if err := client.Rcpt(to); err != nil {
		return smtpReplyError(err)
	}

	w, err := client.Data()
	if err != nil {
		return smtpReplyError(err)
	}
	if _, err := w.Write(body); err != nil {
		return transportError(config.ProviderSMTP, err)
	}
	if err := w.Close(); err != nil {
		return smtpReplyError(err)
	}

	// The message is accepted once DATA is closed.
	_ = client.Quit()
	return nil
}

func (s *SMTP) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.port == implicitTLSPort {
		dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.host}}
		return dialer.DialContext(ctx, "tcp", addr)
	}
	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", addr)
}

// smtpReplyError classifies server replies as provider rejections and anything else as
// a transport failure.
func smtpReplyError(err error) error {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return &Error{Kind: KindProvider, Provider: config.ProviderSMTP, StatusCode: reply.Code, Message: reply.Msg}
	}
	return transportError(config.ProviderSMTP, err)
}

// buildMIMEMessage renders msg as a multipart/alternative RFC 5322 message.
func buildMIMEMessage(from *mail.Address, msg *Message, now time.Time) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", err
	}
	messageID, err := h.MessageID()
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	iw, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, "", err
	}

	parts := []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain", body: msg.Text},
		{contentType: "text/html", body: msg.HTML},
	}
	for _, p := range parts {
		var ph mail.InlineHeader
		ph.SetContentType(p.contentType, map[string]string{"charset": "utf-8"})
		pw, err := iw.CreatePart(ph)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.WriteString(pw, p.body); err != nil {
			return nil, "", err
		}
		if err := pw.Close(); err != nil {
			return nil, "", err
		}
	}

	if err := iw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), messageID, nil
}
