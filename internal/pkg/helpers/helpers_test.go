package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(42, 2, 10)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(42), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParseQueryHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=4&size=1000&authorId=7&upcoming=true&bad=x", nil)
	c.Params = gin.Params{{Key: "id", Value: "12"}, {Key: "neg", Value: "-1"}}

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 4, page)
	assert.Equal(t, DefaultPageSize, size)

	id, ok := ParseIDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
	_, ok = ParseIDParam(c, "neg")
	assert.False(t, ok)

	assert.Equal(t, int64(7), *ParseInt64Query(c, "authorId"))
	assert.Nil(t, ParseInt64Query(c, "bad"))
	assert.True(t, ParseBoolQuery(c, "upcoming"))
	assert.False(t, ParseBoolQuery(c, "missing"))
}

func TestStartOfDayUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2026, 3, 10, 2, 15, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), StartOfDayUTC(in))
}
