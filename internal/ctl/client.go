package ctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// apiError is the JSON error body skywatchd writes for failed requests.
type apiError struct {
	Status  string   `json:"-"`
	Message string   `json:"error"`
	Kind    string   `json:"kind"`
	Code    *int     `json:"code"`
	Reasons []string `json:"reasons"`
}

func (e *apiError) Error() string {
	var b strings.Builder
	b.WriteString("HTTP " + e.Status)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	for _, r := range e.Reasons {
		b.WriteString("\n  - " + r)
	}
	return b.String()
}

// responseError turns a non-2xx response into an error, preferring the
// daemon's JSON error body when there is one.
func responseError(resp *http.Response, path string) error {
	b, _ := io.ReadAll(resp.Body)
	ae := &apiError{Status: resp.Status}
	if json.Unmarshal(b, ae) == nil && ae.Message != "" {
		return ae
	}
	msg := strings.TrimSpace(string(b))
	if msg != "" {
		return fmt.Errorf("HTTP %s: %s", resp.Status, msg)
	}
	return fmt.Errorf("HTTP %s from %s", resp.Status, path)
}

// send issues a request and decodes a JSON response into dst, which may be
// nil.
func send(client *http.Client, method, baseURL, path, contentType string, body io.Reader, dst any) error {
	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp, path)
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// getJSON sends a GET request and decodes the JSON response into dst.
func getJSON(baseURL, path string, dst any) error {
	return send(httpClient, http.MethodGet, baseURL, path, "", nil, dst)
}

// getRaw sends a GET request and returns the raw response body.
func getRaw(baseURL, path string) (int, []byte, error) {
	url := strings.TrimRight(baseURL, "/") + path
	resp, err := httpClient.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// sendJSON marshals body (when non-nil) and sends it with method.
func sendJSON(method, baseURL, path string, body, dst any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	return send(httpClient, method, baseURL, path, "application/json", reqBody, dst)
}

// postJSON sends a POST request with a JSON body and decodes the response.
func postJSON(baseURL, path string, body, dst any) error {
	return sendJSON(http.MethodPost, baseURL, path, body, dst)
}

// postText sends raw text, used for element documents.
func postText(baseURL, path, text string, dst any) error {
	return send(httpClient, http.MethodPost, baseURL, path, "text/plain", strings.NewReader(text), dst)
}

// printJSON prints v as indented JSON to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
