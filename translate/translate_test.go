package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("register r7", From("register r%v", 7))
	assert.Equal("plain", From("plain"))
}

func TestLocales(t *testing.T) {
	assert := assert.New(t)

	t.Setenv(LANG_ENV, "de-DE")
	assert.Equal([]string{"de-DE"}, locales())

	t.Setenv(LANG_ENV, "")
	assert.NotEmpty(locales())
}
