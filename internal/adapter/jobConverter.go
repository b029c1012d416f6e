package adapter

import (
	"fmt"
	"time"

	"github.com/avolpe/manualchat/internal/api"
	"github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/avolpe/manualchat/internal/rag"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		Status:    string(job.Status),
		Step:      string(job.CurrentStep),
		Ingest:    toIngestResult(job.Payload),
		Error:     errorPtr,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
	}
}

func toIngestResult(payload jobModel.IngestPayload) *api.IngestResult {
	if payload.DocumentName == "" {
		return nil
	}
	return &api.IngestResult{
		DocumentName: payload.DocumentName,
		Category:     payload.Category,
		PageCount:    payload.PageCount,
		ChunkCount:   payload.ChunkCount,
		SkippedPages: payload.SkippedPages,
	}
}

func ToChatResponse(out *rag.QueryOutput) api.ChatResponse {
	return api.ChatResponse{
		Answer:         out.Answer,
		Sources:        out.Sources,
		Citations:      out.Citations,
		Actions:        out.Actions,
		Confidence:     out.Confidence,
		MessageID:      out.MessageID,
		ConversationID: out.ConversationID,
	}
}

func BadRequest(id string, message string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		Status:    "Error",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: message,
			Retry:   false,
		},
	}
}
