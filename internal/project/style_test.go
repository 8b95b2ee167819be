package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleStyle = `@import "../../common/base.wxss";
@import './theme.wxss';
@import url("/styles/reset.wxss");
.card { color: red; }
`

func TestParseStyleImports(t *testing.T) {
	got := ParseStyleImports([]byte(sampleStyle))
	assert.Equal(t, []string{"../../common/base.wxss", "./theme.wxss", "/styles/reset.wxss"}, got)
	assert.Empty(t, ParseStyleImports([]byte(".a{}")))
}

func TestReplaceStyleImports(t *testing.T) {
	got := ReplaceStyleImports([]byte(sampleStyle), func(s string) string {
		return strings.ToUpper(s)
	})
	want := `@import "../../COMMON/BASE.WXSS";
@import './THEME.WXSS';
@import url("/STYLES/RESET.WXSS");
.card { color: red; }
`
	assert.Equal(t, want, string(got))

	plain := []byte(".a{}")
	assert.Equal(t, plain, ReplaceStyleImports(plain, strings.ToUpper))
}
