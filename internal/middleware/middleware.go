package middleware

import (
	"net/http"
	"strconv"

	"github.com/avolpe/manualchat/internal/handlers"
	"github.com/avolpe/manualchat/internal/metrics"
	"github.com/avolpe/manualchat/pkg/logx"
)

var logMW = logx.NewLogger("middleware")

// Wrapped handlers registered on the router. Every request passes through the
// same chain: trace injection, bearer auth, per-IP rate limiting, metrics.
var (
	GetHandler             = Wrap(handlers.GetHandler)
	ChatHandler            = Wrap(handlers.ChatHandler)
	ChatStreamHandler      = Wrap(handlers.ChatStreamHandler)
	GetStatusHandler       = Wrap(handlers.GetStatusHandler)
	PostIngestHandler      = Wrap(handlers.PostIngestHandler)
	CategoriesHandler      = Wrap(handlers.CategoriesHandler)
	DeleteCategoryHandler  = Wrap(handlers.DeleteCategoryHandler)
	DeleteDocumentsHandler = Wrap(handlers.DeleteDocumentsHandler)
)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}

		processRequest(rec, r, next)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(w *metrics.HttpStatusRecorder, r *http.Request, next http.HandlerFunc) {
	r = injectTrace(r)

	if !authenticate(w, r) {
		return
	}
	if !rateLimit(w, r) {
		return
	}

	next(w, r)
}
