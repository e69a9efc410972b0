package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	t.Run("Success - removes tags", func(t *testing.T) {
		assert.Equal(t, "Hello world", StripMarkup("<p>Hello <b>world</b></p>"))
	})

	t.Run("Success - drops scripts", func(t *testing.T) {
		assert.Equal(t, "Title", StripMarkup("<script>alert(1)</script>Title"))
	})

	t.Run("Success - unescapes entities", func(t *testing.T) {
		assert.Equal(t, "Tom & Jerry", StripMarkup("Tom &amp; Jerry"))
	})
}
