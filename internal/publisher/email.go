package publisher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"

	"github.com/ryosukesatoh/morning-summary/internal/report"
)

// DeliveryError is returned when the mail transport rejects or cannot send
// the summary.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("email: failed to deliver to %s: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type sendFunc func(ctx context.Context, e *email.Email) error

// EmailPublisher sends the summary as a multipart (text + HTML) email to a
// single recipient. Every send opens one SMTP connection, bounded by timeout
// and the caller's context, and closes it before returning.
type EmailPublisher struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	timeout  time.Duration
	send     sendFunc
}

func NewEmailPublisher(host string, port int, username, password, from, to string, timeout time.Duration) *EmailPublisher {
	p := &EmailPublisher{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		timeout:  timeout,
	}
	p.send = p.deliver
	return p
}

func (p *EmailPublisher) Publish(ctx context.Context, r *report.SummaryReport) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Recipient: p.to, Err: err}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	e := email.NewEmail()
	e.From = p.from
	e.To = []string{p.to}
	e.Subject = r.Subject
	e.Text = []byte(r.Text)
	e.HTML = []byte(r.HTML)

	if err := p.send(ctx, e); err != nil {
		if cerr := contextErr(ctx); cerr != nil && !errors.Is(err, cerr) {
			err = fmt.Errorf("%w: %v", cerr, err)
		}
		return &DeliveryError{Recipient: p.to, Err: err}
	}
	return nil
}

// contextErr also reports a deadline the connection reached a moment before
// the context's own timer fired.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}

// deliver runs one SMTP session. The connection carries the context deadline
// and is closed as soon as the context ends, so a server that stalls cannot
// hold the run.
func (p *EmailPublisher) deliver(ctx context.Context, e *email.Email) error {
	msg, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))
	tlsCfg := &tls.Config{ServerName: p.host}
	implicitTLS := p.port == 465

	var conn net.Conn
	if implicitTLS {
		conn, err = (&tls.Dialer{Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp greeting failed: %w", err)
	}
	defer c.Close()

	if !implicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("starttls failed: %w", err)
			}
		}
	}
	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(smtp.PlainAuth("", p.username, p.password, p.host)); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(p.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(p.to); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp message rejected: %w", err)
	}
	return c.Quit()
}
