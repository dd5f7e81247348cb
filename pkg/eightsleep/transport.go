/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package eightsleep pkg/eightsleep/transport.go

package eightsleep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a whole device request (connect + read).
const DefaultTimeout = 10 * time.Second

// httpTransport talks plain HTTP to a fixed host:port. It never resolves
// or discovers the device, and it never lets a network fault escape as
// anything other than ErrDeviceUnavailable.
type httpTransport struct {
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	started bool
}

func newHTTPTransport(host string, port int, timeout time.Duration) *httpTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &httpTransport{
		baseURL: fmt.Sprintf("http://%s:%d", host, port),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *httpTransport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = true

	return nil
}

func (t *httpTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return nil
	}

	t.started = false
	t.client.CloseIdleConnections()

	return nil
}

// Do performs one request against the device. See Transport.
func (t *httpTransport) Do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		return nil, ErrNotStarted
	}

	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		log.Printf("Device request %s %s failed: %v", method, path, err)
		return nil, ErrDeviceUnavailable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			log.Printf("Failed to read device response for %s %s: %v", method, path, err)
			return nil, ErrDeviceUnavailable
		}

		return data, nil
	default:
		log.Printf("Received unexpected status code %d for %s %s", resp.StatusCode, method, path)
		return nil, ErrDeviceUnavailable
	}
}
