// Package state provides the generic screen state holder shared by every
// mycoach view.
//
// # Overview
//
// A Holder owns one screen's data/loading/error triplet and the operations
// that change it. It is built from an Ops value holding the backend calls,
// so the same contract serves clients, sessions, payments, the dashboard and
// the calendar:
//
//	clients := state.New("clients", state.Ops[[]api.Client, state.None, int, api.ClientRequest]{
//		Load:   func(ctx context.Context, _ state.None) ([]api.Client, error) { return c.ListClients(ctx) },
//		Create: c.CreateClient,
//		Update: c.UpdateClient,
//		Delete: c.DeleteClient,
//	}, logger)
//
// # Update Semantics
//
//	Load(filter)       → Loading = true
//	  success          → Data replaced wholesale, Error cleared
//	  failure          → Error set, Data untouched (stale but visible)
//	                   → Loading = false once no load is in flight
//
//	Save(0, req)       → Create(req)      ┐ success: exactly one Load with
//	Save(id, req)      → Update(id, req)  │ the last filter
//	Delete(id)         → Delete(id)       ┘ failure: Error set, no retry
//
// Writes never merge into Data. The server computes totals and balances, so
// every successful write is followed by a full reload.
//
// # Sequencing
//
// Each Load takes a monotonic sequence number. When loads complete out of
// order, a result older than the newest applied one is dropped, so the view
// never regresses to an earlier response.
//
// # Errors
//
// Holders store errors as display strings produced by api.Message. The
// methods still return the underlying error so callers such as the CLI can
// pick an exit status. Calling an operation the holder was built without
// returns ErrUnsupported.
//
// # Concurrency Model
//
// Every state change happens under one mutex and bumps Version. Network
// calls run outside the lock. Views either poll Snapshot or read from
// Subscribe, whose channel holds only the latest snapshot. Close drops any
// result still in flight and closes subscriber channels.
package state
