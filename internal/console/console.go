// Package console is the interactive line-oriented front end. It reads one
// request per line, submits it to a session and prints the stage trace and
// the final summary.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/martinemde/plancritic/agent"
)

// ExampleQuery is the request run by Example.
const ExampleQuery = "Explica qué es machine learning en términos simples"

const (
	executorPreview = 100
	separatorWidth  = 50
)

var exitWords = map[string]bool{"salir": true, "exit": true, "quit": true}

// Runner submits one request. *agent.Session satisfies it.
type Runner interface {
	Submit(ctx context.Context, input string) (*agent.Result, error)
}

type styles struct {
	plain   bool
	prompt  lipgloss.Style
	stage   lipgloss.Style
	answer  lipgloss.Style
	muted   lipgloss.Style
	failure lipgloss.Style
}

func newStyles(plain bool) styles {
	return styles{
		plain:   plain,
		prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		stage:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		answer:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

// Console drives a Runner from a line reader.
type Console struct {
	in          io.Reader
	out         io.Writer
	runner      Runner
	interactive bool
	styles      styles
	mu          sync.Mutex
}

// Option configures a Console.
type Option func(*Console)

// WithInteractive turns the input prompt and colors on or off.
func WithInteractive(on bool) Option {
	return func(c *Console) {
		c.interactive = on
	}
}

// New creates a non-interactive console. Use WithInteractive(IsTerminal(os.Stdin))
// to enable the prompt when attached to a terminal.
func New(in io.Reader, out io.Writer, runner Runner, opts ...Option) *Console {
	c := &Console{in: in, out: out, runner: runner}
	for _, opt := range opts {
		opt(c)
	}
	c.styles = newStyles(!c.interactive)
	return c
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Listener prints one line per finished stage. Subscribe it to the session.
func (c *Console) Listener() agent.Listener {
	return func(ev agent.Event) {
		if ev.Kind != agent.EventStageEnd {
			return
		}
		output, ok := ev.Data["output"].(string)
		if !ok {
			return
		}
		switch ev.Stage {
		case agent.StagePlanner:
			c.printf("%s %s\n", c.styles.render(c.styles.stage, "🧠 PLANIFICADOR:"), output)
		case agent.StageExecutor:
			c.printf("%s %s\n", c.styles.render(c.styles.stage, "⚡ EJECUTOR:"), agent.Preview(output, executorPreview))
		case agent.StageCritic:
			c.printf("%s %s\n", c.styles.render(c.styles.stage, "🔍 CRÍTICO:"), output)
		}
	}
}

// Banner prints the greeting shown before the loop starts.
func (c *Console) Banner() {
	c.printf("🤖 Agente plancritic iniciado!\n")
	c.printf("Escribe 'salir' para terminar.\n\n")
}

// Run reads lines until an exit word, end of input or cancellation. Run
// errors are reported and the loop continues.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for {
		if c.interactive {
			c.printf("%s", c.styles.render(c.styles.prompt, "Usuario: "))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			c.printf("\n¡Hasta luego!\n")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if exitWords[strings.ToLower(input)] {
			c.printf("¡Hasta luego!\n")
			return nil
		}
		if input == "" {
			continue
		}

		if _, err := c.Ask(ctx, input); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, agent.ErrSessionClosed) {
				return err
			}
		}
	}
}

// Ask submits input and prints the summary, or the error and a retry hint.
func (c *Console) Ask(ctx context.Context, input string) (*agent.Result, error) {
	c.printf("\n--- Procesando: '%s' ---\n", input)

	res, err := c.runner.Submit(ctx, input)
	if err != nil {
		c.printf("%s %v\n", c.styles.render(c.styles.failure, "❌ Error:"), err)
		c.printf("Intenta con otra consulta.\n")
		return nil, err
	}

	tools := "Ninguna"
	if len(res.ToolsUsed) > 0 {
		tools = strings.Join(res.ToolsUsed, ", ")
	}
	c.printf("\n%s %s\n", c.styles.render(c.styles.answer, "🤖 Agente:"), res.Answer)
	c.printf("📊 Herramientas usadas: %s\n", tools)
	c.printf("🔄 Iteraciones: %d\n", res.Iterations)
	c.printf("%s\n", c.styles.render(c.styles.muted, strings.Repeat("-", separatorWidth)))
	return res, nil
}

// Example runs ExampleQuery once and prints its answer.
func (c *Console) Example(ctx context.Context) error {
	c.printf("=== EJEMPLO DE USO ===\n")
	res, err := c.runner.Submit(ctx, ExampleQuery)
	if err != nil {
		c.printf("%s %v\n", c.styles.render(c.styles.failure, "❌ Error:"), err)
		return err
	}
	c.printf("Respuesta: %s\n", res.Answer)
	c.printf("\n%s\n\n", strings.Repeat("=", separatorWidth))
	return nil
}
