package handler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshkumar/scheduled-transfers/internal/repository"
	"github.com/riteshkumar/scheduled-transfers/internal/service"
)

func TestRouterLogsUnmatchedRequests(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	transferService := service.NewTransferService(repository.NewMemoryTransferRepository(), service.NewFeeCalculator(), nil, logger)
	accountService := service.NewAccountService(repository.NewMemoryAccountRepository(), logger)
	router := NewRouter(NewTransferHandler(transferService, logger), NewAccountHandler(accountService, logger), logger)

	for _, tc := range []struct {
		method string
		path   string
		status int
	}{
		{method: http.MethodGet, path: "/api/no-such-route", status: http.StatusNotFound},
		{method: http.MethodDelete, path: "/api/transfers", status: http.StatusMethodNotAllowed},
	} {
		logs.Reset()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		assert.Equal(t, tc.status, rec.Code, tc.path)
		requestID := rec.Header().Get("X-Request-ID")
		assert.NotEmpty(t, requestID, tc.path)

		var entry map[string]any
		scanner := bufio.NewScanner(&logs)
		for scanner.Scan() {
			var line map[string]any
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
			if line["msg"] == "incoming request" {
				entry = line
			}
		}
		require.NotNil(t, entry, "no access log for %s %s", tc.method, tc.path)
		assert.Equal(t, tc.path, entry["path"])
		assert.Equal(t, float64(tc.status), entry["status"])
		assert.Equal(t, requestID, entry["request_id"])
	}
}
