package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"community-api/pkg/apierror"
)

// Source is a decoded media payload ready to be written to the object store.
type Source struct {
	ContentType string
	Body        []byte
}

// SourceReader turns a desired media value into image bytes. It accepts
// data: URIs and http(s) URLs and nothing else.
type SourceReader struct {
	client   *http.Client
	maxBytes int64
}

func NewSourceReader(client *http.Client, maxBytes int64, timeout time.Duration) *SourceReader {
	if client == nil {
		client = NewFetchClient(timeout)
	}
	return &SourceReader{client: client, maxBytes: maxBytes}
}

func (r *SourceReader) Read(ctx context.Context, raw string) (Source, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(raw, "data:"):
		return r.decodeDataURI(raw)
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return r.fetch(ctx, raw)
	default:
		return Source{}, apierror.Validation("unsupported media source", "expected a data URI or an http(s) URL")
	}
}

func (r *SourceReader) decodeDataURI(raw string) (Source, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return Source{}, apierror.Validation("malformed data URI", "")
	}

	contentType := ""
	isBase64 := false
	for i, part := range strings.Split(header, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case part == "base64":
			isBase64 = true
		}
	}

	var body []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Source{}, apierror.Validation("malformed data URI", "payload is not valid base64")
		}
		body = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return Source{}, apierror.Validation("malformed data URI", "payload is not valid percent-encoding")
		}
		body = []byte(unescaped)
	}

	if len(body) == 0 {
		return Source{}, apierror.Validation("media source is empty", "")
	}
	if int64(len(body)) > r.maxBytes {
		return Source{}, apierror.Validation("media source is too large", fmt.Sprintf("limit is %d bytes", r.maxBytes))
	}

	contentType, err := mediaContentType(contentType, body)
	if err != nil {
		return Source{}, err
	}

	return Source{ContentType: contentType, Body: body}, nil
}

func (r *SourceReader) fetch(ctx context.Context, raw string) (Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, http.NoBody)
	if err != nil {
		return Source{}, apierror.Validation("invalid media URL", "")
	}

	resp, err := r.client.Do(req)
	if errors.Is(err, errBlockedDestination) {
		return Source{}, apierror.Validation("media URL is not allowed", "the host resolves to a non-public address")
	}
	if err != nil {
		return Source{}, apierror.AssetStore("fetch media source", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Source{}, apierror.Validation("media URL could not be fetched", fmt.Sprintf("upstream status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return Source{}, apierror.AssetStore("read media source", err)
	}
	if int64(len(body)) > r.maxBytes {
		return Source{}, apierror.Validation("media source is too large", fmt.Sprintf("limit is %d bytes", r.maxBytes))
	}
	if len(body) == 0 {
		return Source{}, apierror.Validation("media source is empty", "")
	}

	contentType, err := mediaContentType(resp.Header.Get("Content-Type"), body)
	if err != nil {
		return Source{}, err
	}

	return Source{ContentType: contentType, Body: bytes.Clone(body)}, nil
}
