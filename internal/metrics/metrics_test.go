package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "signal", EventLabel("signal"))
	assert.Equal(t, "toggleVideo", EventLabel("toggleVideo"))
	assert.Equal(t, "other", EventLabel("drop table rooms"))
	assert.Equal(t, "other", EventLabel(""))
}

func TestSetState(t *testing.T) {
	SetState(7, 3)
	assert.Equal(t, 7.0, testutil.ToFloat64(Connections))
	assert.Equal(t, 3.0, testutil.ToFloat64(Rooms))
}
