package agent

import (
	"fmt"
	"strings"
)

// contextWindow is how many trailing messages the Planner sees.
const contextWindow = 3

// PlannerPrompt asks for a step-by-step plan for the latest user request.
func PlannerPrompt(s State) string {
	var history strings.Builder
	for _, m := range s.RecentMessages(contextWindow) {
		fmt.Fprintf(&history, "- [%s] %s\n", m.Role, m.Content)
	}

	return fmt.Sprintf(`Analiza esta solicitud del usuario y crea un plan de acción específico:

Solicitud: %q

Contexto de la conversación:
%s
Crea un plan paso a paso que indique:
1. Qué tipo de respuesta necesita el usuario
2. Qué información necesitas recopilar
3. Qué acciones específicas tomar

Responde solo con el plan, sin ejecutar nada aún.`, s.LastUserMessage(), history.String())
}

// ExecutorPrompt asks the model to carry out the current plan using the
// listed capabilities.
func ExecutorPrompt(s State, caps []Capability) string {
	var tools strings.Builder
	for _, c := range caps {
		fmt.Fprintf(&tools, "- %s: %s\n", c.Name, c.Description)
	}

	return fmt.Sprintf(`Ejecuta este plan de acción:

Plan: %s

Mensaje original del usuario: %s

Herramientas disponibles:
%s
Ejecuta el plan y proporciona una respuesta útil y completa.
Si necesitas usar herramientas, indica cuáles usarías.`, s.CurrentPlan, s.LastUserMessage(), tools.String())
}

// CriticPrompt asks for one of the three verdict tokens followed by a short
// explanation.
func CriticPrompt(s State) string {
	return fmt.Sprintf(`Evalúa esta ejecución y decide si es satisfactoria:

Solicitud original: %s
Plan: %s
Resultado: %s

Criterios de evaluación:
1. ¿Responde completamente a la solicitud del usuario?
2. ¿La información es precisa y útil?
3. ¿El tono es apropiado?
4. ¿Falta algo importante?

Responde con una de estas opciones:
- %s: Si la respuesta es buena y completa
- %s: Si necesita mejoras (explica qué falta)
- %s: Si el plan inicial fue incorrecto

Formato: [DECISIÓN]: [Explicación breve]`,
		s.LastUserMessage(), s.CurrentPlan, s.ExecutionResult,
		TokenSatisfactory, TokenRevise, TokenReplan)
}
