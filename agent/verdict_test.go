package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyVerdict(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Verdict
	}{
		{"satisfactory", "SATISFACTORIO: la respuesta es completa", VerdictSatisfactory},
		{"lower case", "satisfactorio - bien", VerdictSatisfactory},
		{"mixed case", "Resultado Satisfactorio", VerdictSatisfactory},
		{"replan", "REPLANTEAR: el plan no sirve", VerdictReplan},
		{"revise", "REVISAR: falta un ejemplo", VerdictRevise},
		{"unparseable", "no sé qué decir", VerdictRevise},
		{"empty", "", VerdictRevise},
		{"satisfactory wins over replan", "REPLANTEAR o quizá SATISFACTORIO", VerdictSatisfactory},
		{"replan wins over revise", "REVISAR... mejor REPLANTEAR", VerdictReplan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyVerdict(tt.in))
		})
	}
}

func TestVerdictAction(t *testing.T) {
	assert.Equal(t, ActionComplete, VerdictSatisfactory.Action())
	assert.Equal(t, ActionPlan, VerdictReplan.Action())
	assert.Equal(t, ActionExecute, VerdictRevise.Action())
	assert.Equal(t, ActionExecute, VerdictNone.Action())
}
