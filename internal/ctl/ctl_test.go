package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const issTLE = `ISS (ZARYA)
1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994
2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSubmitPostsDocument(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/elements" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"format":   "TLE",
			"elements": map[string]any{"name": "ISS (ZARYA)", "catalogNumber": 25544, "source": "TLE"},
			"line1":    "1 ...",
			"line2":    "2 ...",
		})
	}))
	defer srv.Close()

	if err := Submit(srv.URL+"/", writeTemp(t, issTLE), true); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotBody != issTLE {
		t.Fatalf("body = %q", gotBody)
	}
	if gotType != "text/plain" {
		t.Fatalf("content type = %q", gotType)
	}
}

func TestSubmitReadsStdin(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true,"format":"TLE","elements":{}}`))
	}))
	defer srv.Close()

	old := stdin
	stdin = strings.NewReader(issTLE)
	defer func() { stdin = old }()

	if err := Submit(srv.URL, "-", true); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if gotBody != issTLE {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestSubmitSurfacesPipelineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error":"InvalidOmm: validation failed","kind":"InvalidOmm","reasons":["MEAN_MOTION missing","EPOCH missing"]}`))
	}))
	defer srv.Close()

	err := Submit(srv.URL, writeTemp(t, `{"OBJECT_NAME":"X"}`), false)
	var ae *apiError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want *apiError", err)
	}
	if ae.Kind != "InvalidOmm" || len(ae.Reasons) != 2 {
		t.Fatalf("apiError = %+v", ae)
	}
	if !strings.Contains(err.Error(), "MEAN_MOTION missing") {
		t.Fatalf("message %q does not list reasons", err.Error())
	}
}

func TestSubmitRejectsEmptyDocument(t *testing.T) {
	if err := Submit("http://127.0.0.1:1", writeTemp(t, "  \n"), false); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := getJSON(srv.URL, "/api/status", nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
}

func TestDecodeOffline(t *testing.T) {
	if err := Decode(writeTemp(t, issTLE), true); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestDecodeListsReasons(t *testing.T) {
	bad := strings.Replace(issTLE, "2 25544 ", "2 25545 ", 1)
	err := Decode(writeTemp(t, bad), false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "InvalidTle") {
		t.Fatalf("err = %v", err)
	}
}

func TestSchedulerControlMethods(t *testing.T) {
	type call struct{ method, path, body string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, call{r.Method, r.URL.Path, string(b)})
		_, _ = w.Write([]byte(`{"ok":true,"message":"done"}`))
	}))
	defer srv.Close()

	if err := Pause(srv.URL, true); err != nil {
		t.Fatal(err)
	}
	if err := Resume(srv.URL, true); err != nil {
		t.Fatal(err)
	}
	if err := SetTime(srv.URL, "2025-05-18T14:30:00+02:00", true); err != nil {
		t.Fatal(err)
	}
	if err := ClearTime(srv.URL, true); err != nil {
		t.Fatal(err)
	}
	if err := SetTime(srv.URL, "tomorrow", true); err == nil {
		t.Fatal("expected error for non RFC 3339 time")
	}

	want := []call{
		{http.MethodPost, "/api/pause", ""},
		{http.MethodPost, "/api/resume", ""},
		{http.MethodPut, "/api/time", `{"time":"2025-05-18T12:30:00Z"}`},
		{http.MethodDelete, "/api/time", ""},
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %+v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}

func TestSetObserver(t *testing.T) {
	var got observerJSON
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/observer" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(got)
	}))
	defer srv.Close()

	err := SetObserver(srv.URL, ObserverOptions{Name: "roof", Latitude: 52.52, Longitude: 13.405, HeightKm: 0.034, JSON: true})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "roof" || got.Latitude != 52.52 || got.Height != 0.034 {
		t.Fatalf("observer sent = %+v", got)
	}

	if err := SetObserver(srv.URL, ObserverOptions{Latitude: 91}); err == nil {
		t.Fatal("expected latitude range error")
	}
}

func TestPassesTruncatesToCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "2025-05-18T12:00:00Z" {
			t.Errorf("from = %q", r.URL.Query().Get("from"))
		}
		_, _ = w.Write([]byte(`{"satellite":"ISS","hours":24,"passes":[
			{"aos":"2025-05-18T13:00:00Z","los":"2025-05-18T13:08:00Z","maxElevation":40,"duration":480000000000},
			{"aos":"2025-05-18T14:35:00Z","los":"2025-05-18T14:41:00Z","maxElevation":12,"duration":360000000000},
			{"aos":"2025-05-18T16:10:00Z","los":"2025-05-18T16:14:00Z","maxElevation":3,"duration":240000000000}]}`))
	}))
	defer srv.Close()

	if err := Passes(srv.URL, PassesOptions{Count: 2, From: "2025-05-18T12:00:00Z"}); err != nil {
		t.Fatal(err)
	}
}

func TestCompass(t *testing.T) {
	cases := map[float64]string{0: "N", 359: "N", 45: "NE", 90: "E", 180: "S", 247.5: "WSW", 270: "W"}
	for az, want := range cases {
		if got := compass(az); got != want {
			t.Errorf("compass(%v) = %s, want %s", az, got, want)
		}
	}
}

func TestRenderEventHandlesEveryType(t *testing.T) {
	events := []string{
		`{"type":"heartbeat","ts":"2025-05-18T12:00:00Z","state":"TRACKING","uptime_seconds":42}`,
		`{"type":"state","ts":"2025-05-18T12:00:00Z","from":"IDLE","to":"TRACKING","time":"live"}`,
		`{"type":"position","ts":"2025-05-18T12:00:00Z","satellite":"ISS","azimuth":120.5,"elevation":-10.2,"range":2500}`,
		`{"type":"elements","ts":"2025-05-18T12:00:00Z","format":"TLE","elements":{"name":"ISS"},"line1":"1","line2":"2","warnings":["old"]}`,
		`{"type":"log","ts":"bad","level":"warn","message":"hi","component":"track"}`,
		`{"type":"mystery"}`,
		`not json`,
	}
	for _, e := range events {
		renderEvent([]byte(e))
	}
}

func TestWSURL(t *testing.T) {
	got, err := wsURL("https://sky.example:8443/?x=1")
	if err != nil || got != "wss://sky.example:8443/ws" {
		t.Fatalf("wsURL = %q, %v", got, err)
	}
	if _, err := wsURL("ftp://x"); err == nil {
		t.Fatal("expected unsupported scheme error")
	}
}

func TestStreamFiltersAndStopsOnClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range []string{
			`{"type":"heartbeat","state":"IDLE"}`,
			`{"type":"position","satellite":"ISS","elevation":12.5}`,
			`{"type":"log","level":"info","message":"x"}`,
		} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(m))
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	target, _ := wsURL(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	err := stream(ctx, target, []string{"position"}, func(raw []byte) {
		got = append(got, string(raw))
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(got) != 1 || !strings.Contains(got[0], `"position"`) {
		t.Fatalf("handled = %v", got)
	}
}
