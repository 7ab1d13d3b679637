package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"eco-award/backend/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单、接口限流、按学校串行化审核重算的咨询锁
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 审核咨询锁 ──
//
// 同一学校的进度重算必须串行：两个审核员同时批准该校最后几份材料时，
// 若并行重算会出现"双方都认为未完成"进而重复发证的竞态。
// SetNX 锁做第一道串行化；学校行的乐观锁版本号是兜底保证。

const reviewLockPrefix = "review:lock:"

// AcquireReviewLock 尝试获取指定学校的审核锁，返回是否获取成功
func (c *Client) AcquireReviewLock(ctx context.Context, schoolID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, reviewLockPrefix+schoolID, "1", ttl).Result()
}

// ReleaseReviewLock 释放指定学校的审核锁
func (c *Client) ReleaseReviewLock(ctx context.Context, schoolID string) error {
	return c.rdb.Del(ctx, reviewLockPrefix+schoolID).Err()
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口限流：窗口内请求数超过 limit 返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// 窗口首个请求，设置过期时间
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
