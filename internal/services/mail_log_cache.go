package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"freightdesk/quote/internal/logger"
	"freightdesk/quote/internal/models"
)

const mailLogCacheTTL = 48 * time.Hour

// cachedMailLogService remembers positive HasLogOfKind answers in Redis.
// Mail logs are append-only, so a "yes" never turns into a "no".
type cachedMailLogService struct {
	IMailLogService
	rdb *redis.Client
}

// NewCachedMailLogService wraps next with a Redis cache. A nil client returns next unchanged.
func NewCachedMailLogService(next IMailLogService, rdb *redis.Client) IMailLogService {
	if rdb == nil {
		return next
	}
	return &cachedMailLogService{IMailLogService: next, rdb: rdb}
}

func mailLogCacheKey(externalID string, kind models.MailLogType, recipient string) string {
	r := strings.ToLower(strings.TrimSpace(recipient))
	if r == "" {
		r = "*"
	}
	return fmt.Sprintf("maillog:%s:%s:%s", externalID, kind, r)
}

func (s *cachedMailLogService) Append(ctx context.Context, entry *models.MailLog) (string, error) {
	id, err := s.IMailLogService.Append(ctx, entry)
	if err != nil {
		return "", err
	}
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, mailLogCacheKey(entry.ExternalID, entry.Type, ""), 1, mailLogCacheTTL)
	if entry.Recipient != "" {
		pipe.Set(ctx, mailLogCacheKey(entry.ExternalID, entry.Type, entry.Recipient), 1, mailLogCacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn(ctx, "failed to cache mail log marker", "external_id", entry.ExternalID, "type", entry.Type, "error", err)
	}
	return id, nil
}

func (s *cachedMailLogService) HasLogOfKind(ctx context.Context, externalID string, kind models.MailLogType, recipient string) (bool, error) {
	key := mailLogCacheKey(externalID, kind, recipient)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err == nil && n > 0 {
		return true, nil
	}
	if err != nil {
		logger.Warn(ctx, "mail log cache lookup failed, falling back to store", "key", key, "error", err)
	}

	found, err := s.IMailLogService.HasLogOfKind(ctx, externalID, kind, recipient)
	if err != nil || !found {
		return found, err
	}
	if err := s.rdb.Set(ctx, key, 1, mailLogCacheTTL).Err(); err != nil {
		logger.Warn(ctx, "failed to cache mail log marker", "key", key, "error", err)
	}
	return true, nil
}
