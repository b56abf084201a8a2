// Package notify announces completed syncs on a NATS subject.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SyncedEvent is published after the table has been replaced.
type SyncedEvent struct {
	TickID          string    `json:"tickId"`
	File            string    `json:"file"`
	PublicationTime string    `json:"publicationTime"`
	Records         int       `json:"records"`
	Deleted         int64     `json:"deleted"`
	SyncedAt        time.Time `json:"syncedAt"`
}

type Publisher struct {
	Conn    *nats.Conn
	Subject string
}

func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("warnsync"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{Conn: conn, Subject: subject}, nil
}

func (p *Publisher) Close() {
	if p.Conn != nil {
		p.Conn.Drain()
		p.Conn.Close()
	}
}

func (p *Publisher) Publish(evt SyncedEvent) error {
	data, err := Encode(evt)
	if err != nil {
		return err
	}
	if err := p.Conn.Publish(p.Subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.Subject, err)
	}
	return nil
}

func Encode(evt SyncedEvent) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// Decode is the subscriber side of Encode.
func Decode(data []byte) (SyncedEvent, error) {
	var evt SyncedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return SyncedEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return evt, nil
}
