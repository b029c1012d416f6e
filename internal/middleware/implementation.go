package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/avolpe/manualchat/internal/adapter/utils"
	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/handlers"
	"github.com/avolpe/manualchat/pkg/logx"
)

func injectTrace(r *http.Request) *http.Request {
	trace := r.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	ctx := context.WithValue(r.Context(), config.TRACE_ID_KEY, trace)
	r.Header.Set(`X-Trace-Id`, trace)
	return r.WithContext(ctx)
}

func authenticate(w http.ResponseWriter, r *http.Request) bool {
	if !IsValidBearerToken(r.Header.Get("Authorization"), logMW) {
		logMW.Warn("Unauthorized request", "IP", r.RemoteAddr)
		handlers.WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
		return false
	}
	return true
}

func IsValidBearerToken(authHeader string, log *logx.Logger) bool {
	if config.NoAuthBypass {
		log.Error("--------------------------------------- auth bypass----------------------------------------------")
		return true
	}
	if authHeader == "" {
		log.Error("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(config.AuthToken)) != 1 {
		log.Error("Invalid authorization header")
		return false
	}

	return true
}

func rateLimit(w http.ResponseWriter, r *http.Request) bool {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		logMW.Error("Too many requests", "Rate Limiter exceeded", ip)
		handlers.WriteErrorResponse(w, http.StatusTooManyRequests, "Your IP: "+r.RemoteAddr, "Rate limit exceeded. Slow down bruh")
		return false
	}
	return true
}
