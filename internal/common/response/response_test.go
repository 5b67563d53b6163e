package response

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJson(t *testing.T) {
	t.Run("given body should write indented json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := WriteJson(context.Background(), buf, map[string]any{"status": "ok"})
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"status\": \"ok\"\n}\n", buf.String())
	})

	t.Run("given unsupported value should return error", func(t *testing.T) {
		err := WriteJson(context.Background(), &bytes.Buffer{}, map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}
