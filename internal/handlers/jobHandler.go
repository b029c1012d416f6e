package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/jobModel"
	"github.com/avolpe/manualchat/internal/job"
	"github.com/avolpe/manualchat/internal/metrics"
	"github.com/avolpe/manualchat/internal/rag"
	"github.com/avolpe/manualchat/pkg/logx"
)

var (
	once        sync.Once
	_jobService *job.Service
	_ragService rag.Service
	logJH       = logx.NewLogger("handlers.job")
	logRH       = logx.NewLogger("handlers.request")
)

type newJobData struct {
	id           string
	traceId      string
	documentName string
	documentPath string
	category     string
}

// InitJobHandler wires the shared job service into the handler package.
// Call once at startup before the server starts accepting requests.
func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		_jobService = jobService
	})
}

// InitRagHandler wires the query/ingestion service into the handler package.
func InitRagHandler(ragService rag.Service) {
	_ragService = ragService
}

func CreateNewJob(data newJobData) {
	newJob := jobModel.Job{
		Id:          data.id,
		TraceId:     data.traceId,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
		Payload: jobModel.IngestPayload{
			DocumentName: data.documentName,
			DocumentPath: data.documentPath,
			Category:     data.category,
		},
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := _jobService.JobStore.SaveJob(saveCtx, newJob); err != nil {
		logJH.Error("Failed to persist new job", "jobId", newJob.Id, "error", err)
	}

	go pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (jobModel.Job, bool) {
	logJH.With("traceId", traceId).Info("Looking up job", "jobId", id)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return _jobService.JobStore.GetJob(ctx, id)
}

func pushToJobChannel(newJob jobModel.Job) {
	metrics.IncrementJobsInQueue()
	_jobService.JobChannel <- newJob

	requestCount := atomic.AddInt64(&_jobService.RequestCount, 1)
	if requestCount%config.RequestsPerNewWorkerCount == 0 || len(_jobService.JobChannel) > 0 {
		logJH.Info("Signaling dispatcher for more workers", "requestCount", requestCount)
		metrics.StartDispatcherSignalCount()
		_jobService.DispatcherChannel <- true
	}
}
