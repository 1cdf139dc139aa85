package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/geohunt/internal/hunt"
)

// readSSE returns the data line of the next event on the stream.
func readSSE(t *testing.T, rd *bufio.Reader) TourEvent {
	t.Helper()
	var data string
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" && data != "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
		}
	}
	var ev TourEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decoding event %q: %v", data, err)
	}
	return ev
}

func TestTourStream(t *testing.T) {
	f := setupTour(t, nil)
	st := f.start(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/tours/"+st.ID+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening stream: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", got)
	}
	rd := bufio.NewReader(resp.Body)

	first := readSSE(t, rd)
	if first.Type != "state" || first.TourID != st.ID || first.State == nil || first.State.View != "home" {
		t.Fatalf("unexpected first event %+v", first)
	}

	body, _ := json.Marshal(TourEventRequest{Kind: hunt.EventGeofenceEntry, Position: "(0, 0)"})
	post, err := http.Post(srv.URL+"/api/tours/"+st.ID+"/events", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("posting event: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusOK {
		t.Fatalf("event: expected 200, got %d", post.StatusCode)
	}

	next := readSSE(t, rd)
	if next.Type != "transition" || !next.FirstVisit {
		t.Errorf("unexpected event %+v", next)
	}
	if next.State == nil || next.State.Location == nil || next.State.Location.ID != f.entry.ID {
		t.Errorf("expected view on %s, got %+v", f.entry.ID, next.State)
	}
}

func TestTourStreamEnded(t *testing.T) {
	f := setupTour(t, nil)
	st := f.start(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/tours/"+st.ID+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening stream: %v", err)
	}
	defer resp.Body.Close()
	rd := bufio.NewReader(resp.Body)

	if first := readSSE(t, rd); first.Type != "state" {
		t.Fatalf("unexpected first event %+v", first)
	}

	del, _ := http.NewRequestWithContext(ctx, http.MethodDelete, srv.URL+"/api/tours/"+st.ID, nil)
	dresp, err := http.DefaultClient.Do(del)
	if err != nil {
		t.Fatalf("deleting tour: %v", err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", dresp.StatusCode)
	}

	ended := readSSE(t, rd)
	if ended.Type != "ended" || ended.TourID != st.ID || ended.State != nil {
		t.Errorf("unexpected ended event %+v", ended)
	}
}

func TestTourStreamUnknownTour(t *testing.T) {
	f := setupTour(t, nil)

	w := request(t, f.router, http.MethodGet, "/api/tours/nope/stream", nil, false)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestTourWebSocket(t *testing.T) {
	f := setupTour(t, nil)
	st := f.start(t)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/api/tours/" + st.ID + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var msg TourMessage
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "state" || msg.State == nil || msg.State.View != "home" {
		t.Fatalf("unexpected first message %+v", msg)
	}

	steps := []struct {
		event      TourEventRequest
		wantType   string
		wantReason string
	}{
		{TourEventRequest{Kind: hunt.EventGeofenceEntry, Position: "(5, 5)"}, "rejected", "no_matching_location"},
		{TourEventRequest{Kind: hunt.EventQRScan, Payload: qrPayload(t, f.qr)}, "transition", ""},
		{TourEventRequest{Kind: hunt.EventGeofenceEntry, Position: "(0, 0"}, "rejected", "invalid_position"},
		{TourEventRequest{Kind: hunt.EventGoHome}, "transition", ""},
	}
	for _, step := range steps {
		if err := wsjson.Write(ctx, conn, step.event); err != nil {
			t.Fatalf("write: %v", err)
		}
		var msg TourMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type != step.wantType {
			t.Errorf("%s: expected %s, got %+v", step.event.Kind, step.wantType, msg)
			continue
		}
		if step.wantReason != "" && (msg.Error == nil || msg.Error.Reason != step.wantReason) {
			t.Errorf("%s: expected reason %s, got %+v", step.event.Kind, step.wantReason, msg.Error)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "done")

	w := request(t, f.router, http.MethodGet, "/api/tours/"+st.ID, nil, false)
	got := decode[TourState](t, w)
	if got.View != "home" || got.VisitedCount != 1 || *got.Earned != 5 {
		t.Errorf("unexpected state after websocket session: %+v", got)
	}
}
