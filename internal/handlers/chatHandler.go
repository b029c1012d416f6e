package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/avolpe/manualchat/internal/adapter"
	"github.com/avolpe/manualchat/internal/api"
	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/rag"
	"github.com/avolpe/manualchat/internal/stream"
)

// ChatHandler godoc
//
//	@Summary		Ask a question about the indexed manuals
//	@Description	Runs retrieval over the vector index and generates a grounded answer with citations
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body		api.ChatRequest	true	"Question payload"
//	@Success		200		{object}	api.ChatResponse
//	@Failure		400		{object}	api.JobResponse
//	@Failure		500		{object}	api.JobResponse
//	@Router			/chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	out, err := _ragService.ProcessQuery(r.Context(), in)
	if err != nil {
		logRH.Error("Query processing failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Failed to process query")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(out))
}

// ChatStreamHandler godoc
//
//	@Summary		Ask a question with a streamed answer
//	@Description	Same pipeline as /chat but the answer arrives as newline-delimited JSON events: one metadata event with sources, ordered content deltas, then one final event
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			request	body	api.ChatRequest	true	"Question payload"
//	@Success		200		{string}	string	"NDJSON event stream"
//	@Failure		400		{object}	api.JobResponse
//	@Router			/chat/stream [post]
func ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	fw := &firstByteWriter{inner: w}
	sw := stream.NewWriter(fw)
	if err := _ragService.StreamQuery(r.Context(), in, sw); err != nil {
		logRH.Error("Streamed query failed", "error", err)
		if !fw.wrote {
			w.Header().Set("Content-Type", "application/json")
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Failed to process query")
		}
		// Once events went out, a failure is signaled by the missing final
		// event; the consumer treats the stream as aborted.
	}
}

// firstByteWriter remembers whether anything reached the wire, so a failure
// before the first event can still produce a regular error response.
type firstByteWriter struct {
	inner http.ResponseWriter
	wrote bool
}

func (f *firstByteWriter) Write(p []byte) (int, error) {
	f.wrote = true
	return f.inner.Write(p)
}

func (f *firstByteWriter) Flush() {
	if fl, ok := f.inner.(http.Flusher); ok {
		fl.Flush()
	}
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (rag.QueryInput, bool) {
	if !validateContext(r.Context()) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Request cancelled")
		return rag.QueryInput{}, false
	}

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Invalid JSON body")
		return rag.QueryInput{}, false
	}

	if req.Question == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return rag.QueryInput{}, false
	}
	if req.Category != "" && !config.IsValidCategory(req.Category) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "unknown category: "+req.Category)
		return rag.QueryInput{}, false
	}

	return rag.QueryInput{
		Question:       req.Question,
		ConversationID: req.ConversationID,
		Category:       req.Category,
		MemoryEnabled:  req.MemoryEnabled,
	}, true
}
