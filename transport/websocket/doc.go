// Package websocket pushes solve results to subscribed WebSocket clients.
//
// A central Hub owns every connection. Clients subscribe to one maze name
// with the ?maze= query parameter when connecting; solves of that maze are
// then pushed to them as JSON messages:
//
//	{"maze": "small", "event": "solution", "solution": {...}}
//
// Layouts solved without a stored definition are published under the name
// "inline". Incoming client messages are read only to detect disconnects.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("maze"))
//	})
//
//	hub.BroadcastSolution(result)
//
// Concurrency:
//
// Subscription state is touched only by the Run goroutine. Each client has
// its own reader and writer goroutine; a client whose send buffer fills up
// is dropped. Once Run returns, broadcasts become no-ops.
package websocket
