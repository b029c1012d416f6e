package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/avolpe/manualchat/internal/data/redisStore"
	"github.com/avolpe/manualchat/internal/data/store"
	"github.com/avolpe/manualchat/internal/domain/convModel"
	"github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/redis/go-redis/v9"
)

func newTestBacking(t *testing.T) (*redisStore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return redisStore.NewTestStore(client), mr
}

func TestRedisJobStoreRoundTrip(t *testing.T) {
	backing, _ := newTestBacking(t)
	jobs := store.TestJobStore(backing)
	ctx := context.Background()

	job := jobModel.Job{
		Id:     "job-42",
		Status: jobModel.JobStatusRunning,
		Payload: jobModel.IngestPayload{
			DocumentName: "rover.pdf",
			Category:     "safety",
		},
		CurrentStep: jobModel.IngestEmbedding,
	}

	if err := jobs.SaveJob(ctx, job); err != nil {
		t.Fatal(err)
	}

	got, found := jobs.GetJob(ctx, "job-42")
	if !found {
		t.Fatal("job not found after save")
	}
	if got.Payload.DocumentName != "rover.pdf" || got.CurrentStep != jobModel.IngestEmbedding {
		t.Errorf("job lost fields: %+v", got)
	}

	jobs.DeleteJob(ctx, "job-42")
	if _, found := jobs.GetJob(ctx, "job-42"); found {
		t.Error("job still present after delete")
	}
}

func TestRedisJobStoreMissingJob(t *testing.T) {
	backing, _ := newTestBacking(t)
	jobs := store.TestJobStore(backing)

	if _, found := jobs.GetJob(context.Background(), "nope"); found {
		t.Error("found a job that was never saved")
	}
}

func TestRedisConversationStoreHistory(t *testing.T) {
	backing, _ := newTestBacking(t)
	conv := store.TestConversationStore(backing)
	ctx := context.Background()

	if err := conv.InitConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if !conv.ValidateConversation(ctx, "c1") {
		t.Fatal("freshly initialized conversation should validate")
	}
	if conv.ValidateConversation(ctx, "unknown") {
		t.Error("unknown conversation should not validate")
	}

	for i := 0; i < 8; i++ {
		msg := convModel.Message{
			ID:      fmt.Sprintf("m%d", i),
			Role:    convModel.RoleUser,
			Content: fmt.Sprintf("question %d", i),
		}
		if err := conv.AppendMessage(ctx, "c1", msg); err != nil {
			t.Fatal(err)
		}
	}

	history, err := conv.History(ctx, "c1", 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 6 {
		t.Fatalf("history length = %d, want last 6", len(history))
	}
	if history[0].ID != "m2" || history[5].ID != "m7" {
		t.Errorf("wrong tail: first=%s last=%s", history[0].ID, history[5].ID)
	}
}

func TestRedisConversationStoreSkipsCorruptEntries(t *testing.T) {
	backing, mr := newTestBacking(t)
	conv := store.TestConversationStore(backing)
	ctx := context.Background()

	good, _ := json.Marshal(convModel.Message{ID: "ok", Role: convModel.RoleUser, Content: "hi"})
	if _, err := mr.Push("conv:c2", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := mr.Push("conv:c2", string(good)); err != nil {
		t.Fatal(err)
	}

	history, err := conv.History(ctx, "c2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != "ok" {
		t.Errorf("corrupt entry handling broken: %+v", history)
	}
}

func TestInMemoryJobStore(t *testing.T) {
	jobs := store.InitInMemoryJobStore()
	ctx := context.Background()

	_ = jobs.SaveJob(ctx, jobModel.Job{Id: "j1", Status: jobModel.JobStatusQueued})
	got, found := jobs.GetJob(ctx, "j1")
	if !found || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("got %+v found=%v", got, found)
	}

	jobs.DeleteJob(ctx, "j1")
	if _, found := jobs.GetJob(ctx, "j1"); found {
		t.Error("job survived delete")
	}
}

func TestInMemoryConversationStore(t *testing.T) {
	conv := store.InitInMemoryConversationStore()
	ctx := context.Background()

	// a first append starts the conversation, same as the redis store
	if err := conv.AppendMessage(ctx, "fresh", convModel.Message{ID: "x", Role: convModel.RoleUser}); err != nil {
		t.Fatalf("append to fresh conversation: %v", err)
	}
	if !conv.ValidateConversation(ctx, "fresh") {
		t.Error("conversation started by append should validate")
	}
	history, err := conv.History(ctx, "fresh", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].ID != "x" {
		t.Errorf("history after first append = %+v", history)
	}

	_ = conv.InitConversation(ctx, "c1")
	if !conv.ValidateConversation(ctx, "c1") {
		t.Fatal("initialized conversation should validate")
	}

	for i := 0; i < 4; i++ {
		_ = conv.AppendMessage(ctx, "c1", convModel.Message{ID: fmt.Sprintf("m%d", i)})
	}
	history, err = conv.History(ctx, "c1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[1].ID != "m3" {
		t.Errorf("tail = %+v", history)
	}
}
