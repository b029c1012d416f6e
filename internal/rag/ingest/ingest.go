package ingest

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/metrics"
	"github.com/avolpe/manualchat/internal/rag/chunker"
	"github.com/avolpe/manualchat/internal/rag/embedding"
	"github.com/avolpe/manualchat/internal/rag/extract"
	"github.com/avolpe/manualchat/internal/rag/ragerr"
	"github.com/avolpe/manualchat/internal/rag/vectorDB"
	"github.com/avolpe/manualchat/pkg/logx"
)

var logger *logx.Logger

// ProcessDocumentIngestion runs one upload through the whole pipeline:
// extract, chunk, embed, upsert. The job records which stage it is in so
// a status poll shows progress. Any failure removes already-upserted
// passages for this document - a manual is indexed fully or not at all.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	logger = logx.NewLogger("Document Ingestion ")
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	docName := job.Payload.DocumentName
	docPath := job.Payload.DocumentPath
	category := job.Payload.Category
	log.Debug("Processing document", "filename", docName, "category", category)

	defer cleanupUpload(docPath, log)

	if !config.IsValidCategory(category) {
		return jobError(job, "unknown category: "+category)
	}

	job.CurrentStep = jobModel.IngestExtracting
	extracted, err := extract.ExtractDocument(docPath)
	if err != nil {
		log.Error("Error extracting document", "error", err)
		return jobError(job, ragerr.Wrap(ragerr.ErrExtraction, err).Error())
	}
	job.Payload.PageCount = len(extracted.Pages)
	job.Payload.SkippedPages = extracted.SkippedPages
	log.Debug("Extraction finished", "pages", len(extracted.Pages), "skipped", extracted.SkippedPages)

	job.CurrentStep = jobModel.IngestChunking
	chunks := chunker.ChunkSpans(extracted.Spans(), chunker.DefaultConfig())
	if len(chunks) == 0 {
		return jobError(job, "document contains no extractable text")
	}
	job.Payload.ChunkCount = len(chunks)

	doc := manualModel.Document{
		ID:         job.Id,
		Name:       docName,
		File:       docName,
		Category:   category,
		Language:   "en",
		IngestedAt: time.Now().UTC(),
	}
	passages := chunker.BuildPassages(chunks, doc)

	if err := vectorDatabase.EnsureCategory(ctx, category); err != nil {
		log.Error("Error ensuring category partition", "error", err)
		return jobError(job, "vector store unavailable")
	}

	if err := batchIngest(ctx, &job, passages, category, vectorDatabase, e, log); err != nil {
		log.Error("Error indexing document", "error", err)
		// drop whatever made it in before the failure
		if delErr := vectorDatabase.DeleteManual(ctx, category, doc.ID); delErr != nil {
			log.Error("Error cleaning up partial index", "error", delErr)
		}
		metrics.CountDocumentIngested(category, "failure")
		return jobError(job, "Error indexing document")
	}

	metrics.CountDocumentIngested(category, "success")
	metrics.CountChunksIndexed(len(chunks))

	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

// batchIngest embeds and upserts passages in bounded slices so one huge
// manual cannot hold an oversized request open against either service.
// The job step is advanced per stage so a status poll sees where a slow
// ingestion currently is.
func batchIngest(ctx context.Context, job *jobModel.Job, passages []manualModel.IndexedPassage, category string, vectorDatabase vectorDB.DataProcessor, embedder embedding.Embedder, log *logx.Logger) error {
	batchSize := config.EmbeddingBatchSize

	for i := 0; i < len(passages); i += batchSize {
		end := min(i+batchSize, len(passages))
		currentBatch := passages[i:end]

		texts := make([]string, len(currentBatch))
		for j, p := range currentBatch {
			texts[j] = p.Text
		}

		job.CurrentStep = jobModel.IngestEmbedding
		log.Debug("Starting embedding call", "batch", len(currentBatch), "offset", i)
		start := time.Now()
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start))
		if err != nil {
			return err
		}

		job.CurrentStep = jobModel.IngestUpserting
		start = time.Now()
		err = vectorDatabase.UpsertPassages(ctx, category, currentBatch, vectors)
		metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
		if err != nil {
			return err
		}
	}
	return nil
}

func cleanupUpload(path string, log *logx.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error("Error removing uploaded file", "error", err)
	}
}

func jobError(job jobModel.Job, message string) jobModel.Job {
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   true,
	}
	return job
}
