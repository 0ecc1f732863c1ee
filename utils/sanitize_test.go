package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText_StripsMarkup(t *testing.T) {
	assert.Equal(t, "день без сахара", SanitizeText("<b>день без сахара</b>"))
	assert.Equal(t, "", SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "сорвался на торте", SanitizeText(`<a href="http://evil">сорвался на торте</a>`))
}

func TestSanitizeText_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "обычный текст", SanitizeText("  обычный текст  "))
	assert.Equal(t, "", SanitizeText("   "))
}
