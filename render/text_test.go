package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Manutenção elétrica", "Manutencao eletrica"},
		{"✓ feito", "[OK] feito"},
		{"❌ falhou", "[X] falhou"},
		{"N° OM", "No OM"},
		{"“aspas” – travessão…", "\"aspas\" - travessao..."},
		{"linha 1\r\nlinha 2", "linha 1\nlinha 2"},
		{"emoji 🚀 removido", "emoji  removido"},
		{"tab\taqui", "tab aqui"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "-", orDash(" 🚀 "))
	assert.Equal(t, "abc", orDash(" abc "))
}

func TestParseChecklist(t *testing.T) {
	items, ok := parseChecklist("✅ Reaperto\n[ ] Limpeza\n- [x] Teste\nObservacao livre")
	assert.True(t, ok)
	assert.Equal(t, []checkItem{
		{state: checkDone, text: "Reaperto"},
		{state: checkOpen, text: "Limpeza"},
		{state: checkDone, text: "Teste"},
		{state: checkNone, text: "Observacao livre"},
	}, items)

	_, ok = parseChecklist("Texto corrido\nsem marcadores")
	assert.False(t, ok)
}
