package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
)

// chromeSpec is a Chrome ClientHello with ALPN limited to http/1.1, since
// http.Transport cannot speak HTTP/2 over a utls connection.
var chromeSpec = func() *utls.ClientHelloSpec {
	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
	if err != nil {
		return nil
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec
}()

// newBrowserTransport returns a transport whose TLS handshakes look like
// Chrome's.
func newBrowserTransport() *http.Transport {
	return &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialTLSContext:    dialChromeTLS,
		ForceAttemptHTTP2: false,
		IdleConnTimeout:   90 * time.Second,
	}
}

func dialChromeTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	id := utls.HelloCustom
	if chromeSpec == nil {
		id = utls.HelloChrome_Auto
	}
	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, id)
	if chromeSpec != nil {
		if err := tlsConn.ApplyPreset(chromeSpec); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply TLS fingerprint: %w", err)
		}
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
