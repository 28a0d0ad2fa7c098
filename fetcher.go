// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sandboa

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"google.golang.org/appengine/urlfetch"
)

// Response is the payload of a completed page fetch.
type Response struct {
	// StatusCode is the status code of the Response
	StatusCode int
	// Body is the content of the Response
	Body []byte
	// Headers contains the Response's HTTP headers
	Headers *http.Header
	// URL is the final URL after server-side redirects
	URL string
}

// ContentType returns the media type of the response without parameters,
// lowercased, e.g. "text/html".
func (r *Response) ContentType() string {
	if r.Headers == nil {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(r.Headers.Get("Content-Type"), ";")[0]))
	}
	return mediaType
}

// IsHTML reports whether the response carries an HTML document.
func (r *Response) IsHTML() bool {
	ct := r.ContentType()
	return ct == "text/html" || ct == "application/xhtml+xml"
}

// Fetcher performs the HTTP requests of a crawl session. It applies the
// session's user agent and extra headers, enforces a body size limit,
// transparently decompresses gzip bodies and optionally normalizes non-UTF-8
// documents to UTF-8.
type Fetcher struct {
	// UserAgent is sent as the User-Agent header on every request.
	UserAgent string
	// Headers are extra headers added to every request.
	Headers map[string]string
	// MaxBodySize is the request body size limit in bytes. 0 means unlimited.
	MaxBodySize int
	// DetectCharset enables sniffing the character encoding of HTML
	// documents that do not declare one, converting the body to UTF-8.
	DetectCharset bool
	// Client is the underlying HTTP client. Redirects are followed by the
	// client; the Response reports the final URL.
	Client *http.Client
}

// NewFetcher creates a Fetcher with the given timeout.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

// Appengine replaces the fetcher's HTTP client with one backed by the App
// Engine urlfetch service. Call it before the first request when running on
// Google App Engine.
func (f *Fetcher) Appengine(ctx context.Context) {
	client := urlfetch.Client(ctx)
	client.Jar = f.Client.Jar
	client.CheckRedirect = f.Client.CheckRedirect
	client.Timeout = f.Client.Timeout
	f.Client = client
}

func (f *Fetcher) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Get fetches the URL and returns the complete response body, limited to
// MaxBodySize and decompressed if the server sent gzip.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := f.newRequest(ctx, "GET", url)
	if err != nil {
		return nil, err
	}
	res, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var bodyReader io.Reader = res.Body
	if f.MaxBodySize > 0 {
		bodyReader = io.LimitReader(bodyReader, int64(f.MaxBodySize))
	}
	contentEncoding := strings.ToLower(res.Header.Get("Content-Encoding"))
	if !res.Uncompressed && strings.Contains(contentEncoding, "gzip") {
		gz, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		bodyReader = gz
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}

	finalURL := url
	if res.Request != nil && res.Request.URL != nil {
		finalURL = res.Request.URL.String()
	}
	resp := &Response{
		StatusCode: res.StatusCode,
		Body:       body,
		Headers:    &res.Header,
		URL:        finalURL,
	}
	if f.DetectCharset && resp.IsHTML() {
		if fixed, err := toUTF8(body, res.Header.Get("Content-Type")); err == nil {
			resp.Body = fixed
		}
	}
	return resp, nil
}

// Probe checks that a URL is reachable without downloading its body. It
// issues a HEAD request and, when the server rejects HEAD or the transport
// fails, falls back to a GET whose body is discarded after the headers
// arrive. It returns the status code and the Content-Type header.
func (f *Fetcher) Probe(ctx context.Context, url string) (int, string, error) {
	req, err := f.newRequest(ctx, "HEAD", url)
	if err != nil {
		return 0, "", err
	}
	res, err := f.Client.Do(req)
	if err == nil && res.StatusCode < 400 {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
		return res.StatusCode, res.Header.Get("Content-Type"), nil
	}
	if err == nil {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}

	req, err = f.newRequest(ctx, "GET", url)
	if err != nil {
		return 0, "", err
	}
	res, err = f.Client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()
	return res.StatusCode, res.Header.Get("Content-Type"), nil
}

// toUTF8 converts an HTML document to UTF-8. When the Content-Type header
// declares no charset the encoding is sniffed from the body.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if strings.Contains(strings.ToLower(contentType), "charset") {
		r, err := charset.NewReader(bytes.NewReader(body), contentType)
		if err != nil {
			return nil, err
		}
		return io.ReadAll(r)
	}
	d := chardet.NewTextDetector()
	result, err := d.DetectBest(body)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(result.Charset, "UTF-8") {
		return body, nil
	}
	r, err := charset.NewReaderLabel(result.Charset, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
