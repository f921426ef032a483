package mailer

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nexussign/supply/internal/config"
	"github.com/nexussign/supply/pkg/common/code"
	"github.com/nexussign/supply/pkg/middleware/logger"
	"github.com/nexussign/supply/pkg/repo"
)

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendReq struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	CC      []address `json:"cc,omitempty"`
	BCC     []address `json:"bcc,omitempty"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
}

type sendRet struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type relayImpl struct {
	client *resty.Client
}

func NewMailer() repo.Mailer {
	conf := config.Global().Mail
	return New(conf.RelayAddr, conf.APIKey, conf.Timeout)
}

func New(addr, apiKey string, timeout time.Duration) repo.Mailer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &relayImpl{
		client: resty.New().
			SetTimeout(timeout).
			SetBaseURL(addr).
			SetHeaders(map[string]string{
				"X-Api-Key":    apiKey,
				"Content-Type": "application/json",
			}),
	}
}

func toAddresses(emails []string) []address {
	res := make([]address, 0, len(emails))
	for _, e := range emails {
		res = append(res, address{Email: e})
	}
	return res
}

func (m *relayImpl) Send(ctx context.Context, msg *repo.MailMessage) error {
	ret := &sendRet{}
	res, err := m.client.R().SetContext(ctx).
		SetBody(&sendReq{
			From:    address{Email: msg.FromAddress, Name: msg.FromName},
			To:      []address{{Email: msg.To}},
			CC:      toAddresses(msg.CC),
			BCC:     toAddresses(msg.BCC),
			Subject: msg.Subject,
			Text:    msg.Body,
		}).
		SetResult(ret).
		SetError(ret).
		Post("/api/v1/send")
	if err != nil {
		logger.Errorf(ctx, "mail relay post err: %+v", err)
		return code.MailSendErr.WithErr(err)
	}
	if res.StatusCode() != http.StatusOK && res.StatusCode() != http.StatusAccepted {
		return code.MailSendErr.WithMsgf("mail relay http code: %d, msg: %s", res.StatusCode(), ret.Message)
	}
	return nil
}
