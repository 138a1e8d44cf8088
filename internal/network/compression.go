// File: internal/network/compression.go
package network

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

const acceptEncoding = "br, gzip"

var brotliReaderPool = sync.Pool{
	New: func() interface{} { return brotli.NewReader(nil) },
}

// CompressionMiddleware advertises brotli and gzip and decodes the response
// body transparently. Setting Accept-Encoding turns off the transport's own
// gzip handling, so both encodings are decoded here.
type CompressionMiddleware struct {
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport, or http.DefaultTransport when nil.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		// RoundTrip must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport so http.Client can
// release pooled connections.
func (cm *CompressionMiddleware) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if t, ok := cm.Transport.(closeIdler); ok {
		t.CloseIdleConnections()
	}
}

type decodedBody struct {
	io.Reader
	original io.ReadCloser
	release  func() error
}

func (b *decodedBody) Close() error {
	var releaseErr error
	if b.release != nil {
		releaseErr = b.release()
		b.release = nil
	}
	return errors.Join(releaseErr, b.original.Close())
}

// DecompressResponse replaces resp.Body with a decoding reader for a single
// gzip or br Content-Encoding. On error the body may be partly consumed and
// the response must be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	var body *decodedBody
	switch encoding {
	case "", "identity":
		return nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip initialization error: %w", err)
		}
		body = &decodedBody{Reader: zr, original: resp.Body, release: zr.Close}
	case "br":
		br := brotliReaderPool.Get().(*brotli.Reader)
		if err := br.Reset(resp.Body); err != nil {
			brotliReaderPool.Put(br)
			return fmt.Errorf("brotli initialization error: %w", err)
		}
		body = &decodedBody{Reader: br, original: resp.Body, release: func() error {
			_ = br.Reset(strings.NewReader(""))
			brotliReaderPool.Put(br)
			return nil
		}}
	default:
		return fmt.Errorf("unsupported Content-Encoding: %s", encoding)
	}

	resp.Body = body
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}
