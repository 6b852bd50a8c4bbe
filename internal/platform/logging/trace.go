package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

// traceContext is the parsed form of a traceparent header.
type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return traceContext{}, false
	}
	// Version ff is reserved and all-zero IDs are invalid.
	if m[1] == "ff" || m[2] == "00000000000000000000000000000000" || m[3] == "0000000000000000" {
		return traceContext{}, false
	}
	return traceContext{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

func (tc traceContext) resource(projectID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, tc.traceID)
}

// requestFields builds the correlation fields attached to every request log line.
// The second return value is the identifier exposed through TraceIDFromContext.
func requestFields(header, projectID, requestID string) ([]zap.Field, string) {
	var (
		fields []zap.Field
		corrID string
	)
	if projectID != "" {
		if tc, ok := parseTraceparent(header); ok {
			corrID = tc.resource(projectID)
			fields = append(fields,
				zap.String("logging.googleapis.com/trace", corrID),
				zap.String("logging.googleapis.com/spanId", tc.spanID),
				zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
			)
		}
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
		if corrID == "" {
			corrID = requestID
		}
	}
	return fields, corrID
}
