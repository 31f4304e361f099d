package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "wellbeing/internal/adapters/http"
	"wellbeing/internal/adapters/local"
	"wellbeing/internal/catalog"
	"wellbeing/internal/domain"
	"wellbeing/internal/metrics"
	"wellbeing/internal/services/assessments"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := local.Open("")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	svc := assessments.New(assessments.Deps{Store: store, Metrics: metrics.MustNew(reg)})
	srv := httpadapter.New(svc, httpadapter.Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func optionFor(order, value int) string {
	questions, options := catalog.Seed()
	snap := catalog.NewSnapshot(questions, options)
	for _, o := range snap.Options(questions[order-1].ID) {
		if o.Value == value {
			return o.ID
		}
	}
	return ""
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestQuestions(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/questions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing catalog.Listing
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Len(t, listing.Questions, domain.QuestionCount)

	resp, body = do(t, http.MethodGet, ts.URL+"/questions/7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entry catalog.Entry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, 7, entry.Question.OrderIndex)
	require.Len(t, entry.Options, 5)
	for i, o := range entry.Options {
		assert.Equal(t, i+1, o.OrderIndex)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/questions/24", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/questions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "orderIndex")
}

func TestAssessmentFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/assessments", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var a domain.Assessment
	require.NoError(t, json.Unmarshal(body, &a))
	assert.True(t, a.Guest)

	var progress assessments.Progress
	for i := 1; i <= domain.QuestionCount; i++ {
		resp, body = do(t, http.MethodPut, ts.URL+"/assessments/"+a.ID+"/responses",
			domain.Response{QuestionID: strconv.Itoa(i), OptionID: optionFor(i, 4)})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		require.NoError(t, json.Unmarshal(body, &progress))
	}
	assert.True(t, progress.Complete)

	resp, body = do(t, http.MethodGet, ts.URL+"/assessments/"+a.ID+"/responses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.Response
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, domain.QuestionCount)

	resp, body = do(t, http.MethodPost, ts.URL+"/assessments/"+a.ID+"/score", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var report struct {
		Breakdown struct {
			Overall struct {
				Total      float64 `json:"total"`
				Percentage int     `json:"percentage"`
				Grade      string  `json:"grade"`
			} `json:"overall"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.InDelta(t, 8.0, report.Breakdown.Overall.Total, 1e-9)
	assert.Equal(t, 80, report.Breakdown.Overall.Percentage)
	assert.Equal(t, "A-", report.Breakdown.Overall.Grade)

	resp, body = do(t, http.MethodGet, ts.URL+"/assessments/"+a.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view map[string]any
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "scored", view["status"])
	assert.Contains(t, view, "scores")

	resp, body = do(t, http.MethodGet, ts.URL+"/assessments/"+a.ID+"/results?name=Sam&goals=sleep,savings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res assessments.Results
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "fallback", string(res.RecommendationSource))
	assert.NotEmpty(t, res.Nudges)
}

func TestScoreQueuesJobWhenNotWaiting(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, http.MethodPost, ts.URL+"/assessments", map[string]string{"userId": "u1"})
	var a domain.Assessment
	require.NoError(t, json.Unmarshal(body, &a))
	assert.False(t, a.Guest)

	resp, body := do(t, http.MethodPost, ts.URL+"/assessments/"+a.ID+"/score?wait=false", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var accepted map[string]string
	require.NoError(t, json.Unmarshal(body, &accepted))
	assert.Equal(t, a.ID, accepted["assessmentId"])
	assert.NotEmpty(t, accepted["jobId"])

	resp, _ = do(t, http.MethodPost, ts.URL+"/assessments/"+a.ID+"/score?wait=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/assessments?userId=u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.Assessment
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestUnknownAssessmentIs404(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/assessments/nope", "/assessments/nope/responses", "/assessments/nope/results"} {
		resp, body := do(t, http.MethodGet, ts.URL+path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, string(body), "not found")
	}
}

func TestPutResponseRejectsBadBody(t *testing.T) {
	ts := newTestServer(t)
	_, body := do(t, http.MethodPost, ts.URL+"/assessments", nil)
	var a domain.Assessment
	require.NoError(t, json.Unmarshal(body, &a))

	resp, _ := do(t, http.MethodPut, ts.URL+"/assessments/"+a.ID+"/responses", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPut, ts.URL+"/assessments/"+a.ID+"/responses", map[string]string{"questionId": "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInlineScore(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/score", map[string]any{
		"responses": []domain.Response{{QuestionID: "1", OptionID: optionFor(1, 5)}},
		"profile":   map[string]any{"age": 30},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res assessments.Results
	require.NoError(t, json.Unmarshal(body, &res))
	assert.InDelta(t, 0.6, res.Breakdown.Health.Total, 1e-9)

	resp, body = do(t, http.MethodPost, ts.URL+"/score", map[string]any{"responses": map[string]string{"1": "x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "list")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/score", map[string]any{"responses": []domain.Response{}})

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "wellbeing_scoring_duration_seconds")
}
