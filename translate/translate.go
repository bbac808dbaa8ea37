// Package translate formats user visible messages in the host locale.
package translate

import (
	"log"
	"os"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LANG_ENV overrides the host locale list when set.
const LANG_ENV = "MCDP_LANG"

var printer *message.Printer
var tag language.Tag

// locales returns the preferred locales, most preferred first.
func locales() (list []string) {
	if env := os.Getenv(LANG_ENV); len(env) != 0 {
		list = []string{env}
		return
	}

	list, err := locale.GetLocales()
	if err != nil {
		log.Printf("mcdp: locale: %v", err)
	}

	if len(list) == 0 {
		list = []string{"en-US"}
	}

	return
}

func init() {
	tag = message.MatchLanguage(locales()...)
	printer = message.NewPrinter(tag)
}

// Language returns the language messages are formatted for.
func Language() language.Tag {
	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
