package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/avolpe/manualchat/internal/config"
)

var once sync.Once
var pooled *http.Client

// Pooled returns the shared outbound client. The google embedding and
// generation clients both talk to the same endpoints on every request,
// so idle connections are kept warm instead of re-dialing.
func Pooled() *http.Client {
	once.Do(func() {
		pooled = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooled
}
