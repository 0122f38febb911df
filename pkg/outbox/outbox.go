// Package outbox 实现事务性发件箱：领域事件与业务数据同事务落库，由后台泵异步投递到 Kafka
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/marketplace/pkg/logger"
	"gorm.io/gorm"
)

// 消息状态
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Message 发件箱消息
type Message struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Topic     string    `gorm:"column:topic;type:varchar(100);index;not null"`
	EventKey  string    `gorm:"column:event_key;type:varchar(100)"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	Status    string    `gorm:"column:status;type:varchar(20);index;default:'pending'"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (Message) TableName() string { return "outbox_messages" }

// Manager 负责消息的写入与状态流转
type Manager struct {
	db *gorm.DB
}

// NewManager 创建 Manager
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// PublishInTx 在给定事务内写入一条待投递消息。
// tx 必须是 *gorm.DB 事务句柄；为 nil 时直接使用默认连接（无事务保证）。
func (m *Manager) PublishInTx(ctx context.Context, tx any, topic, key string, event any) error {
	db := m.db
	if tx != nil {
		gormTx, ok := tx.(*gorm.DB)
		if !ok {
			return errors.New("outbox: tx is not a *gorm.DB")
		}
		db = gormTx
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := Message{
		ID:       uuid.New().String(),
		Topic:    topic,
		EventKey: key,
		Payload:  string(payload),
		Status:   StatusPending,
	}
	return db.WithContext(ctx).Create(&msg).Error
}

// Pusher 将消息投递到消息总线
type Pusher func(ctx context.Context, topic, key string, payload []byte) error

// Processor 后台轮询 pending 消息并投递
type Processor struct {
	manager   *Manager
	pusher    Pusher
	batchSize int
	interval  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewProcessor 创建 Processor
func NewProcessor(manager *Manager, pusher Pusher, batchSize int, interval time.Duration) *Processor {
	return &Processor{
		manager:   manager,
		pusher:    pusher,
		batchSize: batchSize,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start 启动后台泵
func (p *Processor) Start() {
	go func() {
		defer close(p.doneCh)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				if err := p.processBatch(context.Background()); err != nil {
					logger.Error(context.Background(), "outbox batch failed", "error", err)
				}
			}
		}
	}()
}

// Stop 停止后台泵并等待当前批次完成
func (p *Processor) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.doneCh
}

func (p *Processor) processBatch(ctx context.Context) error {
	var messages []Message
	err := p.manager.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at").
		Limit(p.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := p.pusher(ctx, msg.Topic, msg.EventKey, []byte(msg.Payload)); err != nil {
			logger.Warn(ctx, "outbox push failed",
				"message_id", msg.ID,
				"topic", msg.Topic,
				"error", err,
			)
			p.manager.db.WithContext(ctx).Model(&Message{}).
				Where("id = ?", msg.ID).
				Updates(map[string]any{"attempts": gorm.Expr("attempts + 1")})
			continue
		}

		if err := p.manager.db.WithContext(ctx).Model(&Message{}).
			Where("id = ?", msg.ID).
			Update("status", StatusSent).Error; err != nil {
			return err
		}
	}
	return nil
}

// Cleanup 清理已投递的历史消息
func (m *Manager) Cleanup(ctx context.Context, before time.Time) error {
	return m.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", StatusSent, before).
		Delete(&Message{}).Error
}
