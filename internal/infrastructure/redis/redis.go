package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
)

const packetKeyPrefix = "anvil:packet:"

// PacketStore keeps track of the packets created through the service.
type PacketStore interface {
	SavePacket(ctx context.Context, record *entity.PacketRecord) error
	// GetPacket returns entity.ErrNotFound for unknown packets
	GetPacket(ctx context.Context, eid string) (*entity.PacketRecord, error)
	DeletePacket(ctx context.Context, eid string) error
	Ping(ctx context.Context) error
}

type RedisClient struct {
	Client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPacketStore returns a Redis backed store, or an in-process store when
// Redis is disabled.
func NewPacketStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (PacketStore, error) {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, packet records are kept in memory")
		return NewMemoryStore(), nil
	}

	client, err := NewRedisClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*RedisClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected successfully",
		zap.String("addr", addr),
		zap.Int("db", cfg.Redis.DB),
		zap.Duration("packet_ttl", cfg.Redis.PacketTTL),
	)

	return &RedisClient{
		Client: client,
		ttl:    cfg.Redis.PacketTTL,
		logger: logger,
	}, nil
}

func (r *RedisClient) SavePacket(ctx context.Context, record *entity.PacketRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal packet record: %w", err)
	}
	if err := r.Client.Set(ctx, packetKeyPrefix+record.EID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save packet %s: %w", record.EID, err)
	}
	return nil
}

func (r *RedisClient) GetPacket(ctx context.Context, eid string) (*entity.PacketRecord, error) {
	data, err := r.Client.Get(ctx, packetKeyPrefix+eid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get packet %s: %w", eid, err)
	}

	var record entity.PacketRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal packet %s: %w", eid, err)
	}
	return &record, nil
}

func (r *RedisClient) DeletePacket(ctx context.Context, eid string) error {
	return r.Client.Del(ctx, packetKeyPrefix+eid).Err()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// MemoryStore is a PacketStore for single-process use and tests.
type MemoryStore struct {
	mu      sync.Mutex
	packets map[string]entity.PacketRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{packets: make(map[string]entity.PacketRecord)}
}

func (m *MemoryStore) SavePacket(_ context.Context, record *entity.PacketRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packets[record.EID] = *record
	return nil
}

func (m *MemoryStore) GetPacket(_ context.Context, eid string) (*entity.PacketRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.packets[eid]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &record, nil
}

func (m *MemoryStore) DeletePacket(_ context.Context, eid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.packets, eid)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

var Module = fx.Module("redis",
	fx.Provide(NewPacketStore),
)
