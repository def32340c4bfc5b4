package updating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatProgress(t *testing.T) {
	t.Run("known total shows a percentage", func(t *testing.T) {
		assert.Equal(t, "50%@10KiB/s", FormatProgress(500, 1000, 10))
	})

	t.Run("percentage rounds down", func(t *testing.T) {
		assert.Equal(t, "99%@1KiB/s", FormatProgress(999, 1000, 1))
	})

	t.Run("unknown total falls back to raw KiB", func(t *testing.T) {
		assert.Equal(t, "2KiB@5KiB/s", FormatProgress(2500, 0, 5))
	})

	t.Run("negative total falls back to raw KiB", func(t *testing.T) {
		assert.Equal(t, "1KiB@3KiB/s", FormatProgress(1500, -1, 3))
	})

	t.Run("zero bytes", func(t *testing.T) {
		assert.Equal(t, "0%@0KiB/s", FormatProgress(0, 1000, 0))
		assert.Equal(t, "0KiB@0KiB/s", FormatProgress(0, 0, 0))
	})
}
