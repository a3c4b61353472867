// Package ui provides the terminal user interface for mycoach.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model never talks to the API directly: it
// reads from the state holders in package screens and starts their loads and
// writes as commands. Each holder is subscribed once in New; a changedMsg
// arrives whenever a holder publishes, and the model copies that holder's
// latest snapshot into its view state before listening again.
//
// # Package Structure
//
//   - app.go: Model, Update/View, subscriptions and the Run entry point
//   - actions.go: per-screen keys, forms and delete confirmations
//   - list.go: cursor and change highlighting for list screens
//   - render.go: header, tabs, tables and the dashboard
//   - modal.go: form and confirm dialogs
//   - requestlog.go: the HTTP request log view
//   - help.go, keys.go, theme.go, style_helpers.go: presentation
//
// # Screens
//
// Dashboard, Clients, Sessions, Payments and Calendar are switched with 1-5
// or tab. Switching focuses the screen, which both reloads it and makes it
// the target of the background poller. On Clients, c narrows Sessions and
// Payments to the selected client; c on either of those clears the filter.
//
// # Writes
//
// Forms validate locally first and never send an invalid request. A form
// stays open while its write is in flight and after a rejected write, so the
// input is not lost. Successful writes close the dialog, show the server's
// message and rely on the holder's reload to refresh the list.
//
// # Errors
//
// A screen's last load or write error is shown as a banner under the header
// until esc dismisses it. The header reports loading and offline states.
package ui
