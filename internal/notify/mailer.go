package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"golang.org/x/time/rate"

	"github.com/garnizeh/jobmatch/internal/config"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends messages over SMTP as multipart/alternative emails. Sends
// are throttled so a burst of offers does not trip provider limits.
type Mailer struct {
	cfg     config.NotifyConfig
	limiter *rate.Limiter
	send    sendFunc
	logger  *slog.Logger
	now     func() time.Time
}

func NewMailer(cfg config.NotifyConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Mailer{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		send:    smtp.SendMail,
		logger:  logger,
		now:     time.Now,
	}
}

// Notify sends msg and returns its Message-Id.
func (m *Mailer) Notify(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("mail rate limit: %w", err)
	}

	raw, id, err := m.Compose(msg)
	if err != nil {
		return "", err
	}

	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}
	if err := m.send(addr, auth, m.cfg.FromAddress, []string{msg.ToAddress}, raw); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", msg.ToAddress, err)
	}

	m.logger.Info("mail sent", slog.String("to", msg.ToAddress), slog.String("message_id", id))
	return id, nil
}

// Compose renders msg as a MIME email with a plain text part and, when
// present, an HTML alternative.
func (m *Mailer) Compose(msg Message) ([]byte, string, error) {
	var h mail.Header
	h.SetDate(m.now())
	h.SetAddressList("From", []*mail.Address{{Name: m.cfg.FromName, Address: m.cfg.FromAddress}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.ToName, Address: msg.ToAddress}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("message id: %w", err)
	}
	id, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("message id: %w", err)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, "", err
	}
	tw, err := mw.CreateInline()
	if err != nil {
		return nil, "", err
	}
	if err := writePart(tw, "text/plain", msg.TextBody); err != nil {
		return nil, "", err
	}
	if msg.HTMLBody != "" {
		if err := writePart(tw, "text/html", msg.HTMLBody); err != nil {
			return nil, "", err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), id, nil
}

func writePart(tw *mail.InlineWriter, contentType, body string) error {
	var ph mail.InlineHeader
	ph.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ph)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
