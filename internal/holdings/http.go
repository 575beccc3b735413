package holdings

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/logger"
)

// httpSource fetches holding records from a positions feed over HTTP. The
// feed is expected to answer GET <url>?underlying=<ticker> with a JSON
// array of Record values.
type httpSource struct {
	url       string
	client    *resty.Client
	secondary Source
}

// NewHTTPSource builds an HTTP-backed source with an optional secondary
// fallback. Transient failures are retried before falling through.
func NewHTTPSource(url string, secondary Source) Source {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond)
	return &httpSource{url: url, client: client, secondary: secondary}
}

func (h *httpSource) Secondary() Source {
	return h.secondary
}

func (h *httpSource) Load(underlying string) ([]collection.Holding, error) {
	var records []Record
	resp, err := h.client.R().
		SetQueryParam("underlying", underlying).
		SetResult(&records).
		Get(h.url)
	if err != nil {
		return nil, fmt.Errorf("holdings: fetching %s: %w", h.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("holdings: fetching %s: status %d", h.url, resp.StatusCode())
	}
	kept := records[:0]
	for _, r := range records {
		if r.Symbol == underlying || r.Underlying == underlying {
			kept = append(kept, r)
		}
	}
	logger.Debugf("holdings: %s: %d records, %d on %s", h.url, len(records), len(kept), underlying)
	return ToHoldings(kept)
}
