package api

import (
	"time"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// requests---------------------

type ChatRequest struct {
	Question       string `json:"question" validate:"required" example:"How do I calibrate the Z axis?"`
	ConversationID string `json:"conversation_id,omitempty" example:"1f0a9c1e-4b7d-4d57-9f2e-8c31a2b6d001"`
	Category       string `json:"category,omitempty" example:"maintenance"`
	MemoryEnabled  bool   `json:"memory_enabled" example:"true"`
}

// responses--------------------

type ChatResponse struct {
	Answer         string                 `json:"answer"`
	Sources        []manualModel.SourceRef `json:"sources"`
	Citations      []manualModel.Citation `json:"citations"`
	Actions        []manualModel.Action   `json:"actions,omitempty"`
	Confidence     float64                `json:"confidence" example:"0.87"`
	MessageID      string                 `json:"message_id" example:"msg_4f8a2c91d07b"`
	ConversationID string                 `json:"conversation_id"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Status    string            `json:"status" example:"RUNNING"`
	Step      string            `json:"current_step" example:"Embedding"`
	Ingest    *IngestResult     `json:"ingest,omitempty"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type IngestResult struct {
	DocumentName string `json:"document_name"`
	Category     string `json:"category"`
	PageCount    int    `json:"page_count,omitempty"`
	ChunkCount   int    `json:"chunk_count,omitempty"`
	SkippedPages int    `json:"skipped_pages,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}
