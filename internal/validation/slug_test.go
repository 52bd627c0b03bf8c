package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Atualização de Versão", "atualizacao-de-versao"},
		{"Notícias: o retorno!", "noticias-o-retorno"},
		{"  espaço   em   branco  ", "espaco-em-branco"},
		{"100% Go", "100-go"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
