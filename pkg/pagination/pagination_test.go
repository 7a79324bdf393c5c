package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := Parse(newTestContext(t, ""))

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseComputesOffset(t *testing.T) {
	p := Parse(newTestContext(t, "page=3&limit=25"))

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Offset)
}

func TestParseClampsLimit(t *testing.T) {
	p := Parse(newTestContext(t, "page=1&limit=5000"))
	assert.Equal(t, MaxLimit, p.Limit)

	p = Parse(newTestContext(t, "page=1&limit=0"))
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestParseRejectsNonPositivePage(t *testing.T) {
	p := Parse(newTestContext(t, "page=-2&limit=10"))

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, 0, p.Offset)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 20, Offset(2, 20))
	assert.Equal(t, 90, Offset(10, 10))

	// Out-of-range pages fall back to the first page.
	assert.Equal(t, 0, Offset(0, 20))
	assert.Equal(t, 0, Offset(-3, 20))
}
