// Package events carries post lifecycle notifications to interested
// consumers: the in-process live feed hub and, when configured, a NATS
// subject for other instances.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MarkovDN/pulseblog/internal/blog/domain"
	"github.com/MarkovDN/pulseblog/internal/common/logger"
)

const SubjectPostCreated = "post.created"

type PostCreatedEvent struct {
	PostID    int64     `json:"post_id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	GroupSlug string    `json:"group_slug,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPostCreatedEvent(post domain.Post) PostCreatedEvent {
	event := PostCreatedEvent{
		PostID:    int64(post.ID),
		Text:      post.Text,
		AuthorID:  post.Author.ID,
		Author:    post.Author.Username,
		ImagePath: post.ImagePath,
		CreatedAt: post.CreatedAt,
	}
	if post.Group != nil {
		event.GroupSlug = post.Group.Slug
	}
	return event
}

type Publisher interface {
	PublishPostCreated(ctx context.Context, post domain.Post) error
	Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(ctx context.Context, post domain.Post) error {
	return nil
}

func (NoopPublisher) Close() {}

// Multi fans one event out to several publishers, reporting the first error
// after every publisher has seen the event.
type Multi []Publisher

func (m Multi) PublishPostCreated(ctx context.Context, post domain.Post) error {
	var firstErr error
	for _, p := range m {
		if err := p.PublishPostCreated(ctx, post); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Close() {
	for _, p := range m {
		p.Close()
	}
}

type NATSPublisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// connectOptions disables echo delivery: the local hub is fed directly, so
// the publishing connection must not receive its own messages back.
func connectOptions() []nats.Option {
	return []nats.Option{nats.NoEcho()}
}

func NewNATSPublisher(url string, log *logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, connectOptions()...)
	if err != nil {
		return nil, err
	}

	log.Infof("connected to NATS at %s", url)

	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) PublishPostCreated(ctx context.Context, post domain.Post) error {
	payload, err := json.Marshal(NewPostCreatedEvent(post))
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectPostCreated, payload)
}

// SubscribePostCreated delivers raw post-created payloads, including those
// published by other instances.
func (p *NATSPublisher) SubscribePostCreated(handler func([]byte)) (*nats.Subscription, error) {
	return p.conn.Subscribe(SubjectPostCreated, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}
