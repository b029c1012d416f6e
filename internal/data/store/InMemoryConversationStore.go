package store

import (
	"context"
	"sync"

	"github.com/avolpe/manualchat/internal/domain/convModel"
)

// InMemoryConversationStore keeps chat history per conversation id in
// process memory, used when redis is unavailable.
type InMemoryConversationStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]convModel.Message
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]convModel.Message),
	}
}

func (store *InMemoryConversationStore) InitConversation(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.chatMap[id]; !ok {
		store.chatMap[id] = make([]convModel.Message, 0)
	}
	return nil
}

func (store *InMemoryConversationStore) ValidateConversation(ctx context.Context, id string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[id]
	return ok
}

// AppendMessage creates the conversation on first write, mirroring the
// redis store where an append to a fresh key just starts the list.
func (store *InMemoryConversationStore) AppendMessage(ctx context.Context, conversationID string, msg convModel.Message) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[conversationID] = append(store.chatMap[conversationID], msg)
	return nil
}

func (store *InMemoryConversationStore) History(ctx context.Context, conversationID string, limit int) ([]convModel.Message, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	msgs := store.chatMap[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]convModel.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
