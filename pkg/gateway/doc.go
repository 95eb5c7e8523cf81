// Package gateway puts request handling behind a bounded executor.
//
// A Gateway submits work and waits for it with a deadline, 30s unless the
// executor or WithTimeout says otherwise. A timed out caller gets
// types.ErrTimeout while the task finishes on its own. Rejections surface
// as *types.RejectedError unless WithRetry is set.
//
//	exec, _ := executor.New(executor.GatewayConfig())
//	_ = exec.Start(ctx)
//	gw := gateway.New(exec, gateway.WithLogger(logger))
//
//	user, err := gateway.Call(ctx, gw, func(ctx context.Context) (*User, error) {
//		return store.User(ctx, id)
//	})
//
// Middleware applies the same to a whole http.Handler:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(gw.Middleware)
package gateway
