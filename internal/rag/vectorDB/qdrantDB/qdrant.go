package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/pkg/logx"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logx.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

// pointNamespace makes point ids deterministic: qdrant only accepts UUID or
// integer ids, so the content-hash chunk id is folded into a v5 UUID. The
// same chunk text always maps to the same point - re-ingestion upserts
// instead of duplicating.
var pointNamespace = uuid.MustParse("8f2a1c70-55c1-4b7e-9e57-2a4f0d9b6c31")

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logx.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	// every category partition exists up front, so a search never races a
	// first ingest into that category
	for _, category := range config.Categories {
		if err := createCollection(ctx, client, collectionName(category)); err != nil {
			logger.Error("could not create collection", "category", category, "error", err)
			return nil
		}
	}

	// cache misses are tolerable, so a failure here only logs
	initCacheCollection(ctx, client)

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func collectionName(category string) string {
	return config.CollectionPrefix + category
}

func (db *ClientHolder) EnsureCategory(ctx context.Context, category string) error {
	return createCollection(ctx, db.QObj, collectionName(category))
}

// Search queries one category partition. Qdrant's cosine score is already a
// similarity in [0,1]; the threshold is enforced both server-side and here
// so callers never see sub-threshold noise.
func (db *ClientHolder) Search(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	hits, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName(category),
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		ScoreThreshold: qdrant.PtrOf(float32(threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	var results []manualModel.RetrievalResult
	for _, hit := range hits {
		similarity := float64(hit.Score)
		if similarity < threshold {
			continue
		}
		results = append(results, manualModel.RetrievalResult{
			ID:         hit.Payload["chunk_id"].GetStringValue(),
			Text:       hit.Payload["content"].GetStringValue(),
			Meta:       payloadToMeta(hit.Payload),
			Similarity: similarity,
		})
	}

	loggr.Debug("Search finished", "category", category, "hits", len(results))
	return results, nil
}

func (db *ClientHolder) UpsertPassages(ctx context.Context, category string, passages []manualModel.IndexedPassage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("mismatch: got %d passages but %d vectors", len(passages), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(passages))
	for i, p := range passages {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewSHA1(pointNamespace, []byte(p.ID)).String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    p.ID,
				"content":     p.Text,
				"manual_name": p.Manual.Name,
				"manual_file": p.Manual.File,
				"manual_id":   p.Manual.ID,
				"category":    p.Manual.Category,
				"page_number": int64(p.PageNumber),
				"section":     p.Section,
				"chunk_index": int64(p.ChunkIndex),
				"bbox_x0":     p.BBox.X0,
				"bbox_y0":     p.BBox.Y0,
				"bbox_x1":     p.BBox.X1,
				"bbox_y1":     p.BBox.Y1,
				"confidence":  p.Confidence,
				"language":    p.Manual.Language,
				"created_at":  p.CreatedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName(category),
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// DeleteCategory drops the whole partition. Callers observe either all
// passages or none - the collection drop is atomic on the qdrant side.
func (db *ClientHolder) DeleteCategory(ctx context.Context, category string) error {
	if err := db.QObj.DeleteCollection(ctx, collectionName(category)); err != nil {
		return fmt.Errorf("qdrant delete collection failed: %w", err)
	}
	// recreate empty so the partition keeps existing for future ingests
	return createCollection(ctx, db.QObj, collectionName(category))
}

// DeleteManual removes every passage owned by one document, used both for
// document deletion and for cleanup after a failed ingestion.
func (db *ClientHolder) DeleteManual(ctx context.Context, category string, manualID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName(category),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("manual_id", manualID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by manual failed: %w", err)
	}
	return nil
}

func payloadToMeta(payload map[string]*qdrant.Value) manualModel.PassageMeta {
	return manualModel.PassageMeta{
		ManualName: payload["manual_name"].GetStringValue(),
		ManualFile: payload["manual_file"].GetStringValue(),
		ManualID:   payload["manual_id"].GetStringValue(),
		Category:   payload["category"].GetStringValue(),
		PageNumber: int(payload["page_number"].GetIntegerValue()),
		Section:    payload["section"].GetStringValue(),
		BBox: manualModel.BBox{
			X0: payload["bbox_x0"].GetDoubleValue(),
			Y0: payload["bbox_y0"].GetDoubleValue(),
			X1: payload["bbox_x1"].GetDoubleValue(),
			Y1: payload["bbox_y1"].GetDoubleValue(),
		},
		Confidence: payload["confidence"].GetDoubleValue(),
		Language:   payload["language"].GetStringValue(),
		ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
	}
}

func createCollection(ctx context.Context, client *qdrant.Client, name string) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
