// Package imap pulls unread mail from a plain IMAP inbox. Each fetch
// opens a fresh session, so an aborted poll cycle never leaves a
// half-open connection behind.
package imap

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"coletaflow/internal"
	"coletaflow/internal/config"
)

type Connector struct {
	addr     string
	tlsHost  string // empty means plain TCP
	user     string
	password string
	markSeen bool
}

func NewConnector(cfg config.Config) (*Connector, error) {
	required := []struct{ key, value string }{
		{"IMAP_HOST", cfg.IMAPHost},
		{"IMAP_USER", cfg.IMAPUser},
		{"IMAP_PASSWORD", cfg.IMAPPassword},
	}
	for _, req := range required {
		if err := cfg.Require(req.key, req.value); err != nil {
			return nil, err
		}
	}

	conn := &Connector{
		addr:     fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort),
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		markSeen: cfg.IMAPMarkSeen,
	}
	if cfg.IMAPSecure {
		conn.tlsHost = cfg.IMAPHost
	}
	return conn, nil
}

func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	session, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer session.Logout()

	ids, err := unreadIDs(session, label, max)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return c.collect(session, ids)
}

func (c *Connector) dial() (*imapclient.Client, error) {
	var session *imapclient.Client
	var err error
	if c.tlsHost != "" {
		session, err = imapclient.DialTLS(c.addr, &tls.Config{ServerName: c.tlsHost})
	} else {
		session, err = imapclient.Dial(c.addr)
	}
	if err != nil {
		return nil, err
	}
	if err := session.Login(c.user, c.password); err != nil {
		session.Logout()
		return nil, err
	}
	return session, nil
}

// unreadIDs selects the mailbox and returns the sequence numbers of
// unseen messages, keeping only the newest max.
func unreadIDs(session *imapclient.Client, label string, max int) ([]uint32, error) {
	if _, err := session.Select(label, false); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := session.Search(criteria)
	if err != nil {
		return nil, err
	}
	if len(ids) > max {
		ids = ids[len(ids)-max:]
	}
	return ids, nil
}

func (c *Connector) collect(session *imapclient.Client, ids []uint32) ([]internal.FetchedMailMessage, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	fetchItems := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() { done <- session.Fetch(seqset, fetchItems, messages) }()

	out := make([]internal.FetchedMailMessage, 0, len(ids))
	var fetched []uint32
	for msg := range messages {
		if msg == nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		out = append(out, mailFromParts(msg.Envelope, msg.Uid, msg.InternalDate, raw))
		fetched = append(fetched, msg.SeqNum)
	}
	if err := <-done; err != nil {
		return nil, err
	}

	if c.markSeen && len(fetched) > 0 {
		if err := markRead(session, fetched); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func markRead(session *imapclient.Client, seqNums []uint32) error {
	set := new(imap.SeqSet)
	set.AddNum(seqNums...)
	op := imap.FormatFlagsOp(imap.AddFlags, true)
	return session.Store(set, op, []interface{}{imap.SeenFlag}, nil)
}

// mailFromParts normalizes one fetched message into the shared intake
// shape. Messages without a Message-ID header get a synthetic one
// derived from the IMAP uid so the document store can still dedupe.
func mailFromParts(env *imap.Envelope, uid uint32, internalDate time.Time, raw []byte) internal.FetchedMailMessage {
	msg := internal.FetchedMailMessage{
		Provider:   "imap",
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
		Raw:        raw,
	}
	if env != nil {
		msg.MessageID = env.MessageId
		msg.Subject = env.Subject
		msg.From = senderLine(env.From)
	}
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("imap-%d", uid)
	}
	if !internalDate.IsZero() {
		msg.ReceivedAt = internalDate.UTC().Format(time.RFC3339)
	}
	return msg
}

func senderLine(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		mail := strings.Trim(a.MailboxName+"@"+a.HostName, "@")
		switch {
		case a.PersonalName != "" && mail != "":
			parts = append(parts, fmt.Sprintf("%s <%s>", a.PersonalName, mail))
		case a.PersonalName != "":
			parts = append(parts, a.PersonalName)
		case mail != "":
			parts = append(parts, mail)
		}
	}
	return strings.Join(parts, ", ")
}
