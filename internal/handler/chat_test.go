package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"

	"github.com/tigertix/ticket-assistant/internal/booking"
	"github.com/tigertix/ticket-assistant/internal/database"
	"github.com/tigertix/ticket-assistant/internal/llm"
	"github.com/tigertix/ticket-assistant/internal/model"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

func newChatHandler(t *testing.T) (*ChatHandler, *repository.EventRepo) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), "chat.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.InitSchema(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	repo := repository.NewEventRepo(db)
	svc := booking.NewService(repo)
	// No provider configured: the deterministic parser handles intents,
	// which is also the production posture without an API key.
	h := NewChatHandler(llm.NewResolver(nil), svc, repo)
	return h, repo
}

func seedChatEvent(t *testing.T, repo *repository.EventRepo, name string, total int) *model.Event {
	t.Helper()
	ev := &model.Event{
		Name:         name,
		Date:         "2026-09-12",
		Location:     "Memorial Stadium",
		TotalTickets: total,
	}
	if err := repo.Create(context.Background(), ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, out
}

func TestChatParseRequiresText(t *testing.T) {
	h, _ := newChatHandler(t)
	rec, out := postJSON(t, h.Parse, "/v1/chat/parse", `{"text":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if out["error"] != "Text input required" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestChatParseGreeting(t *testing.T) {
	h, _ := newChatHandler(t)
	rec, out := postJSON(t, h.Parse, "/v1/chat/parse", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["intent"] != "greeting" {
		t.Errorf("intent = %v, want greeting", out["intent"])
	}
	if resp, _ := out["response"].(string); resp == "" {
		t.Error("greeting must carry a conversational response")
	}
}

func TestChatParseViewListsAvailableEvents(t *testing.T) {
	h, repo := newChatHandler(t)
	seedChatEvent(t, repo, "Jazz Night", 50)

	rec, out := postJSON(t, h.Parse, "/v1/chat/parse", `{"text":"show me available events"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	events, ok := out["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("events = %v, want one entry", out["events"])
	}
	if resp, _ := out["response"].(string); !strings.Contains(resp, "Jazz Night") {
		t.Errorf("response %q does not mention the event", resp)
	}
}

func TestChatParseBookProposal(t *testing.T) {
	h, repo := newChatHandler(t)
	seedChatEvent(t, repo, "Jazz Night", 50)

	rec, out := postJSON(t, h.Parse, "/v1/chat/parse", `{"text":"Book 2 tickets for Jazz Night"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["needsConfirmation"] != true {
		t.Errorf("needsConfirmation = %v, want true", out["needsConfirmation"])
	}
	bk, ok := out["booking"].(map[string]any)
	if !ok {
		t.Fatalf("booking = %v", out["booking"])
	}
	if bk["tickets"] != float64(2) {
		t.Errorf("tickets = %v, want 2", bk["tickets"])
	}
	if resp, _ := out["response"].(string); !strings.Contains(resp, "Please confirm your booking.") {
		t.Errorf("response %q missing confirmation prompt", resp)
	}
}

func TestChatParseUnknownEventIsConversational(t *testing.T) {
	h, _ := newChatHandler(t)
	rec, out := postJSON(t, h.Parse, "/v1/chat/parse", `{"text":"book tickets for the winter gala"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (domain refusals are chat outcomes)", rec.Code)
	}
	if resp, _ := out["response"].(string); !strings.Contains(resp, "couldn't find an event") {
		t.Errorf("response = %q", resp)
	}
	if _, ok := out["suggestion"]; !ok {
		t.Error("unknown-event answer should suggest viewing events")
	}
}

func TestChatConfirm(t *testing.T) {
	h, repo := newChatHandler(t)
	ev := seedChatEvent(t, repo, "Jazz Night", 3)

	body := fmt.Sprintf(`{"event_id":%d,"tickets":2}`, ev.ID)
	rec, out := postJSON(t, h.Confirm, "/v1/chat/confirm", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %v", rec.Code, out)
	}
	if out["success"] != true || out["remainingTickets"] != float64(1) {
		t.Errorf("got %v", out)
	}

	// A second confirm for more than remains fails with 400.
	body = fmt.Sprintf(`{"event_id":%d,"tickets":2}`, ev.ID)
	rec, out = postJSON(t, h.Confirm, "/v1/chat/confirm", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if out["success"] != false {
		t.Errorf("success = %v, want false", out["success"])
	}
}

func TestChatConfirmValidatesBody(t *testing.T) {
	h, _ := newChatHandler(t)
	for _, body := range []string{`{"event_id":0,"tickets":2}`, `{"event_id":5,"tickets":0}`} {
		rec, _ := postJSON(t, h.Confirm, "/v1/chat/confirm", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
