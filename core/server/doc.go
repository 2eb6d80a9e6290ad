// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return srv.Run(ctx, router)
//
// Run blocks until the context is canceled and then waits up to the shutdown
// timeout for in-flight requests. Config maps to SERVER_* environment variables;
// setting SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE enables HTTPS.
package server
