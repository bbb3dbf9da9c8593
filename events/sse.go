package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// KeepAliveMessage là dòng comment SSE giữ kết nối mở
	KeepAliveMessage = ":keepalive\n\n"
	retryMillis      = 15000
)

// FormatSSE tạo một server-sent event, data được bọc trong {"data": ...}
func FormatSSE(eventType string, data any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	m := map[string]any{
		"data": data,
	}
	if err := enc.Encode(m); err != nil {
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("event: %s\n", eventType))
	sb.WriteString(fmt.Sprintf("retry: %d\n", retryMillis))
	sb.WriteString(fmt.Sprintf("data: %s\n\n", strings.TrimRight(buf.String(), "\n")))

	return sb.String(), nil
}
