package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"paygate/internal/core/domain"
)

func TestDebugWebhookExhaustionBody(t *testing.T) {
	app := newTestApp(t)
	sink := newWebhookSink(t, http.StatusInternalServerError)
	tm := app.seedMerchant(t, "shop", &sink.server.URL)
	_, _, ww := app.newWorkers(t)

	status, body := app.do(t, tm, http.MethodPost, "/api/v1/merchants/webhook/test", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var log map[string]any
	require.NoError(t, json.Unmarshal(body, &log))
	logID := log["id"].(string)

	for i := 0; i < domain.MaxWebhookAttempts+1; i++ {
		app.runWebhookJobs(t, ww)
	}

	_, body = app.do(t, tm, http.MethodGet, "/api/v1/webhooks/"+logID, nil, nil)
	fmt.Println("GET BODY:", string(body))
}
