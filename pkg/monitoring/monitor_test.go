package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsEndpointExposesForumCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	VoteCounter.WithLabelValues("question", "created").Inc()
	QuestionsCreated.Inc()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/metrics", PrometheusHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "forum_votes_total"))
	assert.True(t, strings.Contains(body, "forum_questions_created_total"))
	assert.True(t, strings.Contains(body, `forum_votes_total{action="created",target_type="question"}`))
}
