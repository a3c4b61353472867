// Package api provides the typed client for the coaching backend's REST API.
//
// # Overview
//
// Every operation is a single request/response pair. Reads decode straight
// into the entity types in types.go; writes return an Ack ({id?, message}).
// Callers never trust the echoed entity and re-fetch the list after a write.
//
// # Endpoints
//
//	GET    /api/dashboard
//	GET    /api/clients          GET /api/clients/{id}
//	POST   /api/clients          PUT /api/clients/{id}     DELETE /api/clients/{id}
//	GET    /api/sessions?client_id=   POST /api/sessions   DELETE /api/sessions/{id}
//	GET    /api/payments?client_id=   POST /api/payments   DELETE /api/payments/{id}
//	GET    /api/calendar/status
//	GET    /api/calendar/events?days=  POST /api/calendar/events
//	DELETE /api/calendar/events/{eventId}
//
// Paths are resolved relative to the transport's base URL, so a base with a
// path prefix ("https://host/coach/") keeps the prefix.
//
// # Money
//
// Amounts use Money, a shopspring/decimal wrapper that encodes as a JSON
// number. Compare amounts with Equal, never with ==.
//
// # Errors
//
//   - Non-2xx responses return *StatusError with the backend's "detail" text.
//   - Network failures are wrapped *url.Error values.
//   - Message converts either into the one string a screen displays.
//
// An unconfigured transport panics: it can only happen when the application
// skipped transport setup.
package api
