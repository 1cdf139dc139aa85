package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/playperu/geohunt/internal/hunt"
)

func createLocation(t *testing.T, h http.Handler, body map[string]any) LocationRow {
	t.Helper()
	w := request(t, h, http.MethodPost, "/api/location", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create location: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	rows := decode[[]LocationRow](t, w)
	if len(rows) != 1 {
		t.Fatalf("create location: expected 1 row, got %d", len(rows))
	}
	return rows[0]
}

func TestCreateLocation(t *testing.T) {
	r, _ := testRouter(t)
	p := createProject(t, r, map[string]any{"title": "Hunt"})

	l := createLocation(t, r, map[string]any{
		"project_id":        p.ID,
		"location_name":     "Great Court",
		"location_trigger":  "Both Location Entry and QR Code Scan",
		"location_position": "-27.4977, 153.0129",
		"score_points":      10,
		"clue":              "Sandstone",
		"location_content":  "<p>Welcome</p>",
	})

	if _, err := uuid.Parse(l.ID); err != nil || l.ProjectID != p.ID {
		t.Errorf("unexpected ids: %+v", l)
	}
	if l.Trigger != hunt.TriggerEntryOrQR {
		t.Errorf("expected trigger %q, got %q", hunt.TriggerEntryOrQR, l.Trigger)
	}

	w := request(t, r, http.MethodGet, "/api/location?project_id=eq."+p.ID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	raw := decode[[]map[string]any](t, w)
	if len(raw) != 1 {
		t.Fatalf("expected 1 location, got %d", len(raw))
	}
	if got := raw[0]["location_position"]; got != "(-27.4977, 153.0129)" {
		t.Errorf("expected canonical position, got %v", got)
	}
}

func TestCreateLocationValidation(t *testing.T) {
	r, _ := testRouter(t)
	p := createProject(t, r, map[string]any{"title": "Hunt"})

	valid := func() map[string]any {
		return map[string]any{
			"project_id":        p.ID,
			"location_name":     "A",
			"location_trigger":  "QR Code Scan",
			"location_position": "(1, 1)",
			"score_points":      5,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"negative points", func(b map[string]any) { b["score_points"] = -1 }},
		{"unknown trigger", func(b map[string]any) { b["location_trigger"] = "Shake" }},
		{"missing trigger", func(b map[string]any) { delete(b, "location_trigger") }},
		{"missing position", func(b map[string]any) { delete(b, "location_position") }},
		{"unparseable position", func(b map[string]any) { b["location_position"] = "somewhere" }},
		{"non-finite position", func(b map[string]any) { b["location_position"] = "(NaN, 1)" }},
		{"missing name", func(b map[string]any) { delete(b, "location_name") }},
		{"missing project", func(b map[string]any) { delete(b, "project_id") }},
		{"unknown project", func(b map[string]any) { b["project_id"] = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)
			w := request(t, r, http.MethodPost, "/api/location", body, true)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateLocations(t *testing.T) {
	r, _ := testRouter(t)
	p := createProject(t, r, map[string]any{"title": "Hunt"})
	other := createProject(t, r, map[string]any{"title": "Other"})
	l := createLocation(t, r, map[string]any{
		"project_id":        p.ID,
		"location_name":     "A",
		"location_trigger":  "Location Entry",
		"location_position": "(0, 0)",
		"score_points":      1,
	})

	w := request(t, r, http.MethodPatch, "/api/location?id=eq."+l.ID, map[string]any{
		"score_points":      7,
		"location_position": "(0.5, 0.25)",
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	rows := decode[[]LocationRow](t, w)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ScorePoints != 7 || rows[0].Position != (hunt.Position{Lat: 0.5, Lng: 0.25}) {
		t.Errorf("patch not applied: %+v", rows[0])
	}
	if rows[0].Name != "A" {
		t.Errorf("name changed to %q", rows[0].Name)
	}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"move to other project", map[string]any{"project_id": other.ID}},
		{"negative points", map[string]any{"score_points": -3}},
		{"blank name", map[string]any{"location_name": " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, r, http.MethodPatch, "/api/location?id=eq."+l.ID, tt.body, true)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteLocations(t *testing.T) {
	r, _ := testRouter(t)
	p := createProject(t, r, map[string]any{"title": "Hunt"})
	a := createLocation(t, r, map[string]any{
		"project_id": p.ID, "location_name": "A",
		"location_trigger": "Location Entry", "location_position": "(0, 0)",
	})
	b := createLocation(t, r, map[string]any{
		"project_id": p.ID, "location_name": "B",
		"location_trigger": "Location Entry", "location_position": "(1, 1)",
	})

	w := request(t, r, http.MethodDelete, "/api/location?id=eq."+a.ID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = request(t, r, http.MethodGet, "/api/location?project_id=eq."+p.ID, nil, true)
	rows := decode[[]LocationRow](t, w)
	if len(rows) != 1 || rows[0].ID != b.ID {
		t.Errorf("expected only %s left, got %+v", b.ID, rows)
	}
}

func TestListQRCodes(t *testing.T) {
	r, _ := testRouter(t)
	p := createProject(t, r, map[string]any{"title": "Hunt"})
	l := createLocation(t, r, map[string]any{
		"project_id": p.ID, "location_name": "Tower",
		"location_trigger": "QR Code Scan", "location_position": "(-27.4968, 153.0131)",
	})

	w := request(t, r, http.MethodGet, "/api/qr?project_id=eq."+p.ID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	codes := decode[[]QRCodeItem](t, w)
	if len(codes) != 1 {
		t.Fatalf("expected 1 code, got %d", len(codes))
	}

	payload, err := hunt.DecodeQR([]byte(codes[0].Payload))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.LocationID != l.ID {
		t.Errorf("expected location id %s, got %s", l.ID, payload.LocationID)
	}
	if payload.LocationName != "Tower" || payload.LocationPosition != "(-27.4968, 153.0131)" {
		t.Errorf("unexpected payload %+v", payload)
	}
}
