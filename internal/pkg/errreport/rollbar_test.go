package errreport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WithoutTokenIsNoop(t *testing.T) {
	r := New(Config{Environment: "test"})
	assert.IsType(t, Noop{}, r)

	id := int64(7)
	assert.NotPanics(t, func() {
		r.Report(errors.New("boom"), &id, nil)
		r.Close()
	})
}
