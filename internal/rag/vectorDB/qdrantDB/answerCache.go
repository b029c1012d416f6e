package qdrantDB

import (
	"context"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/qdrant/go-client/qdrant"
)

func initCacheCollection(ctx context.Context, client *qdrant.Client) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := createCollection(ctx, client, config.CacheCollection); err != nil {
		loggr.Error("Answer cache collection creation failed", "error", err)
	}
}

// GetCachedAnswer looks for a previously generated answer whose query
// embedding is a near-duplicate of this one. A miss is (="", false, nil);
// cache errors are reported but callers treat them as misses.
func (db *ClientHolder) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	hits, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.CacheCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache query failed", "error", err)
		return "", false, err
	}
	if len(hits) == 0 {
		return "", false, nil
	}

	if float64(hits[0].Score) < config.CacheSimilarityCutoff {
		loggr.Debug("Cache near-miss", "similarity", hits[0].Score)
		return "", false, nil
	}

	loggr.Info("Answer cache hit", "similarity", hits[0].Score)
	return hits[0].Payload["answer"].GetStringValue(), true, nil
}

func (db *ClientHolder) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.CacheCollection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
