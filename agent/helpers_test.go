package agent

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

type completerCall struct {
	stage       Stage
	prompt      string
	temperature float64
	model       string
}

// fakeCompleter answers by stage, recognised from the prompt's opening words.
// Each stage replays its script and then repeats the last entry.
type fakeCompleter struct {
	mu      sync.Mutex
	scripts map[Stage][]string
	errs    map[Stage]error
	calls   []completerCall
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{
		scripts: map[Stage][]string{
			StagePlanner:  {"1. Investigar\n2. Responder"},
			StageExecutor: {"Resultado de la ejecución"},
			StageCritic:   {"SATISFACTORIO: ok"},
		},
		errs: map[Stage]error{},
	}
}

func (f *fakeCompleter) script(stage Stage, responses ...string) *fakeCompleter {
	f.scripts[stage] = responses
	return f
}

func (f *fakeCompleter) fail(stage Stage, err error) *fakeCompleter {
	f.errs[stage] = err
	return f
}

func stageOf(prompt string) Stage {
	switch {
	case strings.HasPrefix(prompt, "Analiza"):
		return StagePlanner
	case strings.HasPrefix(prompt, "Ejecuta"):
		return StageExecutor
	case strings.HasPrefix(prompt, "Evalúa"):
		return StageCritic
	}
	return StageEnd
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, temperature float64, modelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stage := stageOf(prompt)
	n := f.countLocked(stage)
	f.calls = append(f.calls, completerCall{stage: stage, prompt: prompt, temperature: temperature, model: modelID})
	if err := f.errs[stage]; err != nil {
		return "", err
	}
	script := f.scripts[stage]
	if len(script) == 0 {
		return "", nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n], nil
}

func (f *fakeCompleter) countLocked(stage Stage) int {
	n := 0
	for _, c := range f.calls {
		if c.stage == stage {
			n++
		}
	}
	return n
}

func (f *fakeCompleter) count(stage Stage) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked(stage)
}

func (f *fakeCompleter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
