package variation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkedStress(t *testing.T) {
	tests := []struct {
		word string
		want Stress
	}{
		{"resolucion", Aguda},
		{"tambien", Aguda},
		{"arbol", Grave},
		{"caracter", Grave},
		{"articulo", Esdrujula},
		{"publico", Esdrujula},
		{"examenes", Esdrujula},
		{"consejo", Aguda},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkedStress(tt.word))
		})
	}
}

func TestAccentuate(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"resolucion", "resolución"},
		{"tambien", "también"},
		{"arbol", "árbol"},
		{"articulo", "artículo"},
		{"academico", "académico"},
		{"sesion", "sesión"},
		{"util", "útil"},
		{"que", ""},
		{"sol", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Accentuate(tt.word))
		})
	}
}

func TestSyllableNuclei(t *testing.T) {
	// i+o is a diphthong, e+o is a hiatus, the u in "que" is silent.
	assert.Len(t, syllableNuclei([]rune("resolucion")), 4)
	assert.Len(t, syllableNuclei([]rune("leon")), 2)
	assert.Len(t, syllableNuclei([]rune("quema")), 2)
}
