package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridMailer delivers messages through the SendGrid v3 API.
type SendgridMailer struct {
	key    string
	host   string
	from   *sgmail.Email
	client *rest.Client
}

// NewSendgridMailer constructs a SendgridMailer. An empty host targets the
// public API.
func NewSendgridMailer(key string, from Sender, host string, timeout time.Duration) *SendgridMailer {
	if host == "" {
		host = sendgridHost
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SendgridMailer{
		key:    key,
		host:   host,
		from:   sgmail.NewEmail(from.Name, from.Address),
		client: &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// Send delivers msg. Non-2xx responses are reported as errors.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	raw, err := m.client.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	res, err := rest.BuildResponse(raw)
	if err != nil {
		return fmt.Errorf("sendgrid response: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (m *SendgridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.Text != "" {
		v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}
