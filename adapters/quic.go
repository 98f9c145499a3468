package adapters

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/quic-go/quic-go/http3"
)

// ListenQUIC serves handler over HTTP/3 (QUIC) at addr, satisfying spec's
// "HTTP/3 over QUIC" transport requirement without the core router or API
// package depending on QUIC internals: http3.Server is the only thing in
// the tree that imports quic-go.
//
//	adapter := adapters.NewRouterAdapter()
//	api := zorya.NewAPI(adapter)
//	go http.ListenAndServe(":8080", adapter) // HTTP/1.1
//	err := adapters.ListenQUIC(context.Background(), ":8443", adapter, tlsConfig)
//
// tlsConfig must carry at least one certificate; QUIC requires TLS 1.3.
func ListenQUIC(ctx context.Context, addr string, handler http.Handler, tlsConfig *tls.Config) error {
	srv := &http3.Server{
		Addr:      addr,
		Handler:   handler,
		TLSConfig: tlsConfig,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
