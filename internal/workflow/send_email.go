package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// ActionSendEmail is the registry name of the send-email action.
const ActionSendEmail = "send_email"

// Send-email options.
const (
	OptionSendTo  = "send_to"
	OptionSubject = "subject"
	OptionBody    = "body"
)

// EmailSender delivers one HTML message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// SendEmail mails the trigger's contact (or any fixed address). Recipients,
// subject and body may use {{EMAIL}}, {{NAME}}, {{FIRST_NAME}},
// {{LAST_NAME}} and {{SOURCE}}, resolved from the first valid entry of the
// data layer.
type SendEmail struct {
	sendTo  string
	subject string
	body    string
	types   *DataTypeRegistry
	sender  EmailSender
	engine  *liquid.Engine
}

// SendEmailFactory builds send-email actions sharing one template engine.
func SendEmailFactory(types *DataTypeRegistry, sender EmailSender) ActionFactory {
	engine := liquid.NewEngine()
	return func(cfg ActionConfig) (Action, error) {
		return newSendEmail(engine, types, sender,
			optionString(cfg.Options, OptionSendTo),
			optionString(cfg.Options, OptionSubject),
			optionString(cfg.Options, OptionBody))
	}
}

// NewSendEmail returns a send-email action. sendTo and subject are required.
func NewSendEmail(types *DataTypeRegistry, sender EmailSender, sendTo, subject, body string) (*SendEmail, error) {
	return newSendEmail(liquid.NewEngine(), types, sender, sendTo, subject, body)
}

func newSendEmail(engine *liquid.Engine, types *DataTypeRegistry, sender EmailSender, sendTo, subject, body string) (*SendEmail, error) {
	if sendTo == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, OptionSendTo)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingOption, OptionSubject)
	}
	if _, err := engine.ParseString(sendTo); err != nil {
		return nil, fmt.Errorf("parse %s: %w", OptionSendTo, err)
	}
	return &SendEmail{
		sendTo:  sendTo,
		subject: subject,
		body:    body,
		types:   types,
		sender:  sender,
		engine:  engine,
	}, nil
}

func (s *SendEmail) Name() string  { return ActionSendEmail }
func (s *SendEmail) Title() string { return "Send email" }
func (s *SendEmail) Group() string { return "Email" }

// Run renders and sends one message per distinct valid recipient. Delivery
// errors are joined; one failed recipient does not stop the rest.
func (s *SendEmail) Run(ctx context.Context, data *DataLayer) error {
	if s.sender == nil {
		return errors.New("send email: no sender configured")
	}
	vars := s.bindings(data)

	to, err := s.render(s.sendTo, vars)
	if err != nil {
		return fmt.Errorf("render %s: %w", OptionSendTo, err)
	}
	subject, err := s.render(s.subject, vars)
	if err != nil {
		return fmt.Errorf("render %s: %w", OptionSubject, err)
	}
	body, err := s.render(s.body, vars)
	if err != nil {
		return fmt.Errorf("render %s: %w", OptionBody, err)
	}

	var errs []error
	for _, rcpt := range Recipients(to) {
		if err := s.sender.SendEmail(ctx, rcpt, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", rcpt, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SendEmail) render(src string, vars liquid.Bindings) (string, error) {
	if src == "" {
		return "", nil
	}
	out, err := s.engine.ParseAndRenderString(src, vars)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (s *SendEmail) bindings(data *DataLayer) liquid.Bindings {
	vars := liquid.Bindings{
		"EMAIL": "", "NAME": "", "FIRST_NAME": "", "LAST_NAME": "", "SOURCE": "",
	}
	found := false
	data.Each(func(typeID string, payload any) {
		if found {
			return
		}
		dt, ok := s.types.Get(typeID)
		if !ok || !dt.Validate(payload) {
			return
		}
		cd := dt.ContactData(payload)
		if !ValidEmail(strings.TrimSpace(cd.Email)) {
			return
		}
		found = true

		first, last := cd.FirstName, cd.LastName
		if first == "" && cd.Name != "" {
			first, last = SplitFullName(cd.Name)
		}
		name := strings.TrimSpace(cd.Name)
		if name == "" {
			name = strings.TrimSpace(first + " " + last)
		}
		vars["EMAIL"] = strings.TrimSpace(cd.Email)
		vars["NAME"] = name
		vars["FIRST_NAME"] = first
		vars["LAST_NAME"] = last
		vars["SOURCE"] = cd.Source
	})
	return vars
}

// Recipients splits a comma-separated address list, dropping blanks,
// invalid addresses and case-insensitive duplicates.
func Recipients(list string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(list, ",") {
		addr := strings.TrimSpace(part)
		if !ValidEmail(addr) {
			continue
		}
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}
