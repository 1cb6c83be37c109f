package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSpinner_SilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	stop := runSpinner(&buf, false, "Querying...")
	stop()
	stop()
	assert.Empty(t, buf.String())
}

func TestRunSpinner_Terminal(t *testing.T) {
	var buf bytes.Buffer
	stop := runSpinner(&buf, true, "Querying...")
	stop()
	stop()

	out := buf.String()
	assert.Contains(t, out, "Querying...")
	assert.Contains(t, out, "\r\033[K")
}
