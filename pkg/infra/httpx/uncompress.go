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
)

// AcceptEncoding lists the encodings DecodeBody understands.
const AcceptEncoding = "gzip, br, zstd, deflate"

// DecodeBody reverses the encodings named in a Content-Encoding header,
// last applied first. Unknown encodings are an error.
func DecodeBody(contentEncoding string, body []byte) ([]byte, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		enc := strings.ToLower(strings.TrimSpace(encodings[i]))
		var err error
		switch enc {
		case "", "identity":
			continue
		case "br":
			body, err = io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		case "gzip":
			body, err = readGzip(body)
		case "zstd":
			body, err = readZstd(body)
		case "deflate":
			body, err = readDeflate(body)
		default:
			return nil, fmt.Errorf("unsupported content-encoding: %q", enc)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", enc, err)
		}
	}
	return body, nil
}

func readGzip(body []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

func readZstd(body []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

// readDeflate accepts both zlib-wrapped and raw deflate streams.
func readDeflate(body []byte) ([]byte, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		defer zr.Close()
		return io.ReadAll(zr)
	}
	fr := flate.NewReader(bytes.NewReader(body))
	defer fr.Close()
	return io.ReadAll(fr)
}
