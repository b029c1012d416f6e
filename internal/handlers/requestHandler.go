package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avolpe/manualchat/internal/adapter"
	"github.com/avolpe/manualchat/internal/adapter/utils"
	"github.com/avolpe/manualchat/internal/api"
	"github.com/avolpe/manualchat/internal/config"
)

// GetHandler godoc
//
//	@Summary		Liveness probe
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	api.HealthResponse
//	@Router			/healthz [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// GetStatusHandler godoc
//
//	@Summary		Fetch the status of an ingestion job
//	@Tags			ingest
//	@Produce		json
//	@Param			id	path		string	true	"Job ID"
//	@Success		200	{object}	api.JobResponse
//	@Failure		404	{object}	api.JobResponse
//	@Router			/status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	traceId := fmt.Sprintf("%v", r.Context().Value(config.TRACE_ID_KEY))

	job, found := validateId(id, traceId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(job))
}

// PostIngestHandler godoc
//
//	@Summary		Upload a manual for ingestion
//	@Description	Accepts a multipart upload and queues an asynchronous extraction, chunking and indexing job
//	@Tags			ingest
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			document		formData	file	true	"Manual file (PDF or text)"
//	@Param			document_name	formData	string	true	"Display name of the manual"
//	@Param			category		formData	string	true	"Manual category"
//	@Success		202	{object}	api.InitJobResponse
//	@Failure		400	{object}	api.JobResponse
//	@Router			/ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Request cancelled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Invalid or oversized multipart body")
		return
	}

	documentName := r.FormValue("document_name")
	category := r.FormValue("category")
	if documentName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document_name is required")
		return
	}
	if !config.IsValidCategory(category) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown category: "+category)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "document file is required")
		return
	}
	defer file.Close()

	targetDir, errMsg := getTargetDirectory()
	if errMsg != "" {
		WriteErrorResponse(w, http.StatusInternalServerError, "", errMsg)
		return
	}

	targetPath := filepath.Join(targetDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	dst, err := os.Create(targetPath)
	if err != nil {
		logRH.Error("Failed to create upload file", "path", targetPath, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage Error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logRH.Error("Failed to persist upload", "path", targetPath, "error", err)
		os.Remove(targetPath)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage Error")
		return
	}

	jobId := utils.GetNewUUID()
	traceId := fmt.Sprintf("%v", r.Context().Value(config.TRACE_ID_KEY))
	CreateNewJob(newJobData{
		id:           jobId,
		traceId:      traceId,
		documentName: documentName,
		documentPath: targetPath,
		category:     category,
	})

	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(jobId))
}

// CategoriesHandler godoc
//
//	@Summary		List the manual categories accepted by the index
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	api.CategoriesResponse
//	@Router			/categories [get]
func CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.CategoriesResponse{Categories: config.Categories})
}

// DeleteCategoryHandler godoc
//
//	@Summary		Remove every manual in a category
//	@Description	Drops the whole category partition in one operation; the partition stays available for future ingests
//	@Tags			ingest
//	@Produce		json
//	@Param			category	path	string	true	"Manual category"
//	@Success		204
//	@Failure		400	{object}	api.JobResponse
//	@Router			/documents/{category} [delete]
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category := utils.GetChiURLParam(r, "category")

	if !config.IsValidCategory(category) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown category: "+category)
		return
	}

	if err := _ragService.DeleteCategory(r.Context(), category); err != nil {
		logRH.Error("Failed to delete category", "category", category, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, category, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocumentsHandler godoc
//
//	@Summary		Remove an indexed manual
//	@Description	Deletes every indexed passage belonging to the manual from its category partition
//	@Tags			ingest
//	@Produce		json
//	@Param			category	path	string	true	"Manual category"
//	@Param			manualID	path	string	true	"Manual ID returned at ingestion"
//	@Success		204
//	@Failure		400	{object}	api.JobResponse
//	@Router			/documents/{category}/{manualID} [delete]
func DeleteDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	category := utils.GetChiURLParam(r, "category")
	manualID := utils.GetChiURLParam(r, "manualID")

	if !config.IsValidCategory(category) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown category: "+category)
		return
	}
	if manualID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "manualID is required")
		return
	}

	if err := _ragService.DeleteManual(r.Context(), category, manualID); err != nil {
		logRH.Error("Failed to delete manual", "category", category, "manualID", manualID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, manualID, "Failed to delete manual")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
