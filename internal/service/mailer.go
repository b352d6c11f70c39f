package service

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ReportSink consumes rendered report artifacts. The core hands values out
// and never inspects a confirmation coming back.
type ReportSink interface {
	DeliverSummary(ctx context.Context, subject, html string) error
	DeliverNotice(ctx context.Context, notice OperatorNotice) error
}

// Mailer delivers reports over SMTP. STARTTLS is negotiated automatically
// when the relay offers it.
type Mailer struct {
	Addr       string // host:port
	From       string
	Recipients []string
}

// NewMailer creates a Mailer for the given relay
func NewMailer(addr, from string, recipients []string) *Mailer {
	return &Mailer{Addr: addr, From: from, Recipients: recipients}
}

// DeliverSummary sends the daily summary to all configured recipients
func (m *Mailer) DeliverSummary(ctx context.Context, subject, html string) error {
	return m.send(ctx, subject, html)
}

// DeliverNotice sends one operator notice to the configured recipients
func (m *Mailer) DeliverNotice(ctx context.Context, notice OperatorNotice) error {
	return m.send(ctx, notice.Subject, notice.HTML)
}

func (m *Mailer) send(ctx context.Context, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.Recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(html)

	if err := smtp.SendMail(m.Addr, nil, m.From, m.Recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send %q via %s: %w", subject, m.Addr, err)
	}
	return nil
}

// FileSink writes report artifacts under a directory: the summary as
// comparison_<date>.html and notices under an "Individual emails" subfolder,
// mirroring how the back office archives them.
type FileSink struct {
	Dir string
}

// NewFileSink creates the sink directories up front
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Join(dir, "Individual emails"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report dir: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

var unsafeFilename = regexp.MustCompile(`[\\/*?:"<>|,]`)

// DeliverSummary writes the summary HTML beside previous days' reports
func (s *FileSink) DeliverSummary(ctx context.Context, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := "comparison_" + safeName(subject) + ".html"
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write summary report: %w", err)
	}
	return nil
}

// DeliverNotice writes one operator notice file
func (s *FileSink) DeliverNotice(ctx context.Context, notice OperatorNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := safeName(notice.Operator.Name+"_"+notice.Subject) + ".html"
	path := filepath.Join(s.Dir, "Individual emails", name)
	if err := os.WriteFile(path, []byte(notice.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write notice for %s: %w", notice.Operator.OperatorID, err)
	}
	return nil
}

func safeName(s string) string {
	return strings.ReplaceAll(unsafeFilename.ReplaceAllString(s, "_"), " ", "_")
}

// MultiSink fans a report out to several sinks; the first failure wins
type MultiSink []ReportSink

func (m MultiSink) DeliverSummary(ctx context.Context, subject, html string) error {
	for _, s := range m {
		if err := s.DeliverSummary(ctx, subject, html); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) DeliverNotice(ctx context.Context, notice OperatorNotice) error {
	for _, s := range m {
		if err := s.DeliverNotice(ctx, notice); err != nil {
			return err
		}
	}
	return nil
}
