package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/voxel"
	"github.com/nats-io/nats.go"
)

// NotifierConfig - настройки рассылки об удалении регионов через NATS
type NotifierConfig struct {
	URL           string        `yaml:"url" env:"WORLDGEN_NATS_URL"`
	Subject       string        `yaml:"subject" env:"WORLDGEN_NATS_SUBJECT"`
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

func (c *NotifierConfig) applyDefaults() {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.Subject == "" {
		c.Subject = "worldgen.erase"
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = 10
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
}

// EraseMessage - уведомление об удалении сохраненного региона
type EraseMessage struct {
	Region    voxel.Region `json:"region"`
	Seed      int64        `json:"seed"`
	NodeID    string       `json:"node_id"`
	Timestamp time.Time    `json:"timestamp"`
}

// EraseHandler обрабатывает уведомление другого узла
type EraseHandler func(msg EraseMessage) error

// EraseNotifier рассылает и принимает уведомления об удалении регионов,
// чтобы другие узлы сбрасывали свои загруженные копии.
type EraseNotifier struct {
	conn    *nats.Conn
	subject string
	nodeID  string

	mu           sync.Mutex
	subscription *nats.Subscription
	handler      EraseHandler

	publishedCount int64
	receivedCount  int64
	errorsCount    int64
}

// NewEraseNotifier подключается к NATS
func NewEraseNotifier(config NotifierConfig, nodeID string) (*EraseNotifier, error) {
	config.applyDefaults()

	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("NATS отключен: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("NATS переподключен к %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.Info("NATS соединение закрыто")
		}),
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к NATS: %w", err)
	}

	logging.Info("NATS уведомления об удалении: %s (subject: %s)", config.URL, config.Subject)
	return &EraseNotifier{conn: conn, subject: config.Subject, nodeID: nodeID}, nil
}

// PublishErase рассылает уведомление об удалении региона
func (n *EraseNotifier) PublishErase(ctx context.Context, region voxel.Region, seed int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(EraseMessage{
		Region:    region,
		Seed:      seed,
		NodeID:    n.nodeID,
		Timestamp: time.Now(),
	})
	if err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("ошибка сериализации уведомления: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		return fmt.Errorf("ошибка публикации уведомления: %w", err)
	}
	atomic.AddInt64(&n.publishedCount, 1)
	logging.Debug("Опубликовано удаление региона %s", region)
	return nil
}

// Subscribe подписывается на уведомления других узлов до отмены ctx
func (n *EraseNotifier) Subscribe(ctx context.Context, handler EraseHandler) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subscription != nil {
		return fmt.Errorf("подписка на %s уже существует", n.subject)
	}
	sub, err := n.conn.Subscribe(n.subject, n.handleMessage)
	if err != nil {
		return fmt.Errorf("ошибка подписки на %s: %w", n.subject, err)
	}
	n.subscription = sub
	n.handler = handler

	go func() {
		<-ctx.Done()
		n.unsubscribe()
	}()
	return nil
}

func (n *EraseNotifier) handleMessage(msg *nats.Msg) {
	atomic.AddInt64(&n.receivedCount, 1)

	var em EraseMessage
	if err := json.Unmarshal(msg.Data, &em); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		logging.Error("Некорректное уведомление об удалении: %v", err)
		return
	}
	// Собственные уведомления уже обработаны локально
	if em.NodeID == n.nodeID {
		return
	}

	n.mu.Lock()
	handler := n.handler
	n.mu.Unlock()
	if handler == nil {
		return
	}
	if err := handler(em); err != nil {
		atomic.AddInt64(&n.errorsCount, 1)
		logging.Error("Ошибка обработки удаления региона %s: %v", em.Region, err)
	}
}

func (n *EraseNotifier) unsubscribe() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subscription == nil {
		return
	}
	if err := n.subscription.Unsubscribe(); err != nil {
		logging.Warn("Ошибка отписки от %s: %v", n.subject, err)
	}
	n.subscription = nil
	n.handler = nil
}

// Stats возвращает счетчики уведомлений
func (n *EraseNotifier) Stats() (published, received, errors int64) {
	return atomic.LoadInt64(&n.publishedCount), atomic.LoadInt64(&n.receivedCount), atomic.LoadInt64(&n.errorsCount)
}

// Close отписывается и закрывает соединение
func (n *EraseNotifier) Close() error {
	n.unsubscribe()
	n.conn.Close()
	return nil
}

// NotifyingPersister после успешного Erase рассылает уведомление через EraseNotifier
type NotifyingPersister struct {
	Persister
	notifier *EraseNotifier
}

// WithEraseNotifier оборачивает хранилище рассылкой об удалениях
func WithEraseNotifier(p Persister, notifier *EraseNotifier) *NotifyingPersister {
	return &NotifyingPersister{Persister: p, notifier: notifier}
}

func (np *NotifyingPersister) Erase(ctx context.Context, region voxel.Region, seed int64) error {
	if err := np.Persister.Erase(ctx, region, seed); err != nil {
		return err
	}
	if err := np.notifier.PublishErase(ctx, region, seed); err != nil {
		logging.Warn("Регион %s удален, но уведомление не отправлено: %v", region, err)
	}
	return nil
}
