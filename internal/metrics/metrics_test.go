package metrics

import (
	"sync"
	"testing"
	"time"
)

// Lazy registration runs on the first recorded event. Concurrent first
// events must initialize exactly once; a duplicate MustRegister would
// panic and fail the test.
func TestConcurrentFirstRecordInitializesOnce(t *testing.T) {
	t.Setenv("ENABLE_BUSINESS_METRICS", "true")

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			RecordHTTPRequest("GET", "/patients", 200, 10*time.Millisecond)
			RecordUpstreamRequest("patients", "GET", time.Now(), 200)
			RecordCacheHit("patients:list")
			RecordCacheMiss("patients:get")
			IncActiveRequests()
			DecActiveRequests()
		}()
	}
	close(start)
	wg.Wait()

	if HTTPRequestsTotal == nil {
		t.Error("Expected gateway metrics to be initialized")
	}
	if upstreamRequestsTotal == nil {
		t.Error("Expected upstream metrics to be initialized")
	}
}
