// Package agentllama provides a bounded-concurrency admission runtime for
// long-running agent executions.
//
// The runtime caps how many agent tasks may run simultaneously, queues the
// excess in arrival order and automatically promotes the longest-waiting task
// whenever a running slot frees up. Execution itself is delegated to a
// caller-supplied Runner; the runtime only gates admission, dispatches
// promotions and keeps a submission ledger.
//
// The engine is designed to be embedded in host applications. End-users
// typically interact with it via the high-level Service façade exposed by the
// root package:
//
//	srv, _ := agentllama.New(
//		agentllama.WithMaxConcurrent(2),
//		agentllama.WithRunner(myRunner),
//	)
//	_ = srv.Start(ctx)
//	rt := srv.Runtime()
//	submission, outcome, _ := rt.Submit(ctx, sessionID, "chat", payload)
//
// For more details see the README and individual sub-packages.
package agentllama
