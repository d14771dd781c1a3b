// Package agent implements a three-stage plan, execute and critique loop
// driven by a text completion client.
//
// Every decision in the loop is delegated to the model. The Planner writes a
// plan for the latest user request, the Executor carries it out and records
// which simulated capabilities the plan mentions, and the Critic grades the
// result with one of three verdicts. A pure Router picks the next stage from
// the state after every stage until the Critic is satisfied or the iteration
// cap is reached.
//
// # Architecture
//
//   - State: the value threaded through one run. Stages take it by value and
//     return a new one.
//   - Planner, Executor, Critic: the stages, each a Node.
//   - Route: maps (iteration count, completion latch, next action) to the
//     next Stage.
//   - Graph / Runnable: registers nodes, wires the router and drives the loop.
//   - Agent: builds the graph from a Config and a Completer.
//   - Session: conversational driver with lifecycle and an event stream.
//
// # Quick Start
//
//	a, err := agent.New(textClient, agent.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session := agent.NewSession(a)
//	defer session.Close()
//
//	result, err := session.Submit(ctx, "Explica qué es machine learning")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Answer)
package agent
