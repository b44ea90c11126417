package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

type decoder func(body []byte) ([]byte, error)

var decoders = map[string]decoder{
	"br":      decodeBrotli,
	"gzip":    decodeGzip,
	"zstd":    decodeZstd,
	"deflate": decodeDeflate,
}

// DecodeBody decodes a response body according to the Content-Encoding
// header. Chained encodings (e.g. "gzip, br") are undone in reverse order.
// Returns the decoded body and whether it changed.
func DecodeBody(resp *fasthttp.Response, body []byte) ([]byte, bool, error) {
	ce := string(resp.Header.Peek("Content-Encoding"))
	if ce == "" {
		return body, false, nil
	}
	encodings := strings.Split(ce, ",")
	changed := false
	for i := len(encodings) - 1; i >= 0; i-- {
		name := strings.TrimSpace(strings.ToLower(encodings[i]))
		switch name {
		case "", "identity", "compress":
			continue
		}
		dec, ok := decoders[name]
		if !ok {
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", encodings[i])
		}
		out, err := dec(body)
		if err != nil {
			return nil, false, err
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

func decodeBrotli(body []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
}

func decodeGzip(body []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(gr)
	if cerr := gr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeZstd(body []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

func decodeDeflate(body []byte) ([]byte, error) {
	// zlib-wrapped first (RFC), raw DEFLATE as fallback
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		out, err := io.ReadAll(zr)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	fr := flate.NewReader(bytes.NewReader(body))
	out, err := io.ReadAll(fr)
	if cerr := fr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
