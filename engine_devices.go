package authcore

import (
	"context"
	"log"
	"time"
)

// touchDeviceAsync records device provenance on a background goroutine.
// Device tracking is best-effort telemetry: a slow or failing tracker must
// never add latency to, or fail, the request that triggered it.
func (e *Engine) touchDeviceAsync(ctx context.Context, userID string) {
	if e == nil || e.devices == nil || !e.config.Devices.Enabled {
		return
	}

	userAgent := userAgentFromContext(ctx)
	ip := clientIPFromContext(ctx)
	if userAgent == "" && ip == "" {
		return
	}

	seenAt := time.Now()
	timeout := e.config.Devices.TouchTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	e.touches.Add(1)
	go func() {
		defer e.touches.Done()

		// Detached from the request context so an early handler return
		// does not cancel the write.
		touchCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := e.devices.Touch(touchCtx, userID, userAgent, ip, seenAt); err != nil {
			e.metricInc(MetricDeviceTouchFailure)
			log.Printf("authcore: device touch failed for user %s: %v", userID, err)
			auditCtx := WithUserAgent(WithClientIP(context.Background(), ip), userAgent)
			e.emitAudit(auditCtx, auditEventDeviceTouchError, false, userID, err, nil)
			return
		}

		e.metricInc(MetricDeviceTouch)
	}()
}
