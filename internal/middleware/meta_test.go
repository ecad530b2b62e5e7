package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponseMetaCarriesCacheHitAndTiming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(WithResponseMeta())

	var meta map[string]interface{}
	router.GET("/cached", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cached", nil))

	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, processingTimeMs)
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	meta := ExtractMeta(c)
	assert.NotNil(t, meta)
	assert.NotContains(t, meta, processingTimeMs)

	assert.NotNil(t, ExtractMeta(nil))
}
