package store

import (
	"context"
	"encoding/json"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/data/redisStore"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/pkg/logx"
)

// RedisConversationStore persists each conversation as a redis list of
// JSON messages, oldest first. Reads tolerate individual corrupt
// entries - one bad message must not erase a whole history.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logx.Logger
}

func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if backing == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  backing,
		logger: logx.NewLogger("ConversationStore"),
	}
}

func (s *RedisConversationStore) InitConversation(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation", id)
	exists, err := s.store.Exists(ctx, key(id))
	if err != nil {
		log.Error("Error checking conversation", "error", err)
		return err
	}
	if exists {
		return nil
	}
	// marker key so ValidateConversation can distinguish "new" from
	// "known but empty"
	return s.store.Set(ctx, markerKey(id), "1", config.RedisConversationStoreTTL)
}

func (s *RedisConversationStore) ValidateConversation(ctx context.Context, id string) bool {
	exists, err := s.store.Exists(ctx, key(id))
	if err != nil {
		return false
	}
	if exists {
		return true
	}
	marked, err := s.store.Exists(ctx, markerKey(id))
	return err == nil && marked
}

func (s *RedisConversationStore) AppendMessage(ctx context.Context, conversationID string, msg convModel.Message) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation", conversationID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, key(conversationID), data); err != nil {
		log.Error("Error saving message", "error", err)
		return err
	}
	return nil
}

func (s *RedisConversationStore) History(ctx context.Context, conversationID string, limit int) ([]convModel.Message, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "conversation", conversationID)

	raw, err := s.store.ListTail(ctx, key(conversationID), limit)
	if s.store.IsNil(err) {
		return nil, nil
	} else if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	msgs := make([]convModel.Message, 0, len(raw))
	for _, entry := range raw {
		var msg convModel.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			log.Error("Skipping corrupt message entry", "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func key(conversationID string) string {
	return "conv:" + conversationID
}

func markerKey(conversationID string) string {
	return "convmark:" + conversationID
}

// TestConversationStore builds a store over an injected redis wrapper.
func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logx.NewLogger("test redis"),
	}
}
