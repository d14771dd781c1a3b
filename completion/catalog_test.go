package completion

import "testing"

func TestGetModelInfo(t *testing.T) {
	info := GetModelInfo("gpt-3.5-turbo-instruct")
	if info == nil {
		t.Fatal("expected catalog entry for the default model")
	}
	if info.API != APICompletions {
		t.Errorf("expected completions API, got %q", info.API)
	}
	if info.Provider != "openai" {
		t.Errorf("expected openai provider, got %q", info.Provider)
	}

	if GetModelInfo("sonnet") == nil || GetModelInfo("sonnet").ID != "claude-sonnet-4-5" {
		t.Error("expected alias lookup to find claude-sonnet-4-5")
	}
	if GetModelInfo("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
}

func TestResolveModelID(t *testing.T) {
	tests := map[string]string{
		"instruct":        "gpt-3.5-turbo-instruct",
		"4o":              "gpt-4o",
		"haiku":           "claude-haiku-4-5",
		"gpt-4o-mini":     "gpt-4o-mini",
		"my-custom-model": "my-custom-model",
		"":                "",
	}
	for in, want := range tests {
		if got := ResolveModelID(in); got != want {
			t.Errorf("ResolveModelID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListModels(t *testing.T) {
	all := ListModels("")
	if len(all) != len(Models) {
		t.Errorf("expected %d models, got %d", len(Models), len(all))
	}
	all[0].ID = "mutated"
	if Models[0].ID == "mutated" {
		t.Error("ListModels must return a copy")
	}

	for _, m := range ListModels("anthropic") {
		if m.Provider != "anthropic" {
			t.Errorf("unexpected provider %q in anthropic listing", m.Provider)
		}
	}
	if len(ListModels("nobody")) != 0 {
		t.Error("expected no models for unknown provider")
	}
}

func TestGetLatestModel(t *testing.T) {
	if m := GetLatestModel("openai", ""); m == nil || m.ID != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %+v", m)
	}
	if m := GetLatestModel("openai", APICompletions); m == nil || m.ID != "gpt-3.5-turbo-instruct" {
		t.Errorf("expected gpt-3.5-turbo-instruct, got %+v", m)
	}
	if m := GetLatestModel("anthropic", APIMessages); m == nil || m.ID != "claude-sonnet-4-5" {
		t.Errorf("expected claude-sonnet-4-5, got %+v", m)
	}
	if GetLatestModel("anthropic", APICompletions) != nil {
		t.Error("expected nil when no model serves the API")
	}
}
