// Package completion provides the text-completion client used by the agent
// stages. It wraps provider SDKs (gollm, openai-go, anthropic-sdk-go) behind a
// single ProviderAdapter interface and exposes the narrow contract the agent
// consumes:
//
//	text, err := client.Complete(ctx, prompt, temperature, modelID)
//
// # Layers
//
//   - ProviderAdapter: one implementation per backend SDK.
//   - Client: routes a Request to an adapter by provider name and applies
//     middleware (rate limiting, metrics, tracing).
//   - TextClient: the prompt-in, text-out boundary. Every failure leaving it
//     is a *CompletionError wrapping a typed cause from the error taxonomy.
//
// # Quick Start
//
//	adapter, _ := completion.NewOpenAIAdapter(os.Getenv("OPENAI_API_KEY"))
//	client := completion.NewClient(completion.WithProvider("openai", adapter))
//	text := completion.NewTextClient(client, completion.NoRetryPolicy())
//
//	plan, err := text.Complete(ctx, "Plan the answer", 0.1, "gpt-3.5-turbo-instruct")
//
// # Model Catalog
//
// A small catalog of known models maps model identifiers to a provider and an
// API family, which is how the client infers a provider when none is given:
//
//	info := completion.GetModelInfo("gpt-3.5-turbo-instruct")
//	fmt.Println(info.Provider, info.API) // openai completions
package completion
