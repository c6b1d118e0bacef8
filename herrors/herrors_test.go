package herrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindNotFound, KindForStatus(http.StatusNotFound))
	assert.Equal(t, KindConflict, KindForStatus(http.StatusConflict))
	assert.Equal(t, KindUnknown, KindForStatus(299))
}

func TestErrProtocolHTTPStatus(t *testing.T) {
	var err error = ErrProtocol{Code: http.StatusGone, Kind: KindGone}
	hs, ok := err.(HTTPStatus)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusGone, hs.HTTPStatus())
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrProtocol{Code: http.StatusNotFound}))
	assert.False(t, IsNotFound(ErrProtocol{Code: http.StatusInternalServerError}))
	assert.False(t, IsNotFound(ErrTransport{}))
}
