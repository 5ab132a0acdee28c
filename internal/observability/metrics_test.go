package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("login", "ok"))
	RecordUpstream("login", "ok", 25*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("login", "ok")))
}

func TestRecordDataset(t *testing.T) {
	before := testutil.ToFloat64(datasetsProcessed.WithLabelValues(OutcomeMalformed))
	RecordDataset(OutcomeMalformed, 0)
	assert.Equal(t, before+1, testutil.ToFloat64(datasetsProcessed.WithLabelValues(OutcomeMalformed)))
}

func TestRecordHTTPUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTP("GET", "", 404)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}
