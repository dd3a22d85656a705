package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/hollowaylabs/interviewkit/interview"
	"github.com/hollowaylabs/interviewkit/interview/store"
)

func testTemplate() interview.Template {
	return interview.Template{
		ID:    "backend",
		Title: "Backend Basics",
		Questions: []string{
			"Tell me about yourself.",
			"Describe a project you are proud of.",
		},
	}
}

func newTestServer(t *testing.T) *server {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	generator := interview.NewReportGenerator(nil, nil, interview.NewSemanticAnalyzer(nil))
	return newServer(db, generator, []interview.Template{testTemplate()})
}

func TestSessionManagerCreate(t *testing.T) {
	t.Parallel()

	m := newSessionManager()
	roomName, sess, msgs, err := m.create("room1", testTemplate(), interview.ModeStrict, "Dana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if roomName != "room1" {
		t.Fatalf("roomName = %q, want room1", roomName)
	}
	if sess == nil {
		t.Fatal("create returned nil session")
	}
	if len(msgs) == 0 {
		t.Fatal("create returned no opening messages")
	}
	if msgs[len(msgs)-1].Text != "Tell me about yourself." {
		t.Fatalf("opening question = %q", msgs[len(msgs)-1].Text)
	}

	if _, _, _, err := m.create("room1", testTemplate(), interview.ModeStrict, ""); err == nil {
		t.Fatal("second create for the same room should fail")
	}

	m.remove("room1")
	if _, ok := m.get("room1"); ok {
		t.Fatal("session still present after remove")
	}
}

func TestSessionManagerGeneratesRoomName(t *testing.T) {
	t.Parallel()

	m := newSessionManager()
	roomName, _, _, err := m.create("", testTemplate(), interview.ModeLearning, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(roomName, "room_") {
		t.Fatalf("generated room name %q missing room_ prefix", roomName)
	}
	if _, ok := m.get(roomName); !ok {
		t.Fatalf("session not registered under generated name %q", roomName)
	}
}

func TestLiveSessionAnswerLoop(t *testing.T) {
	t.Parallel()

	m := newSessionManager()
	_, sess, _, err := m.create("loop", testTemplate(), interview.ModeStrict, "Dana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	msgs, done, err := sess.answer("I have five years of backend experience.", 12)
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if done {
		t.Fatal("flow done after first of two questions")
	}
	if len(msgs) == 0 {
		t.Fatal("no messages after first answer")
	}

	_, done, err = sess.answer("I led a project migrating our billing service.", 15)
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if !done {
		t.Fatal("flow not done after final question")
	}

	data := sess.end()
	if data.Metadata.EndedAt == nil {
		t.Fatal("EndedAt not set after end")
	}
	if len(data.Scores) != 2 {
		t.Fatalf("len(Scores) = %d, want 2", len(data.Scores))
	}
	if data.QuestionCount != 2 {
		t.Fatalf("QuestionCount = %d, want 2", data.QuestionCount)
	}

	if _, _, err := sess.answer("too late", 1); err == nil {
		t.Fatal("answer after end should fail")
	}
}

func TestFinishSessionPersistsReport(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	roomName, sess, _, err := srv.manager.create("finish", testTemplate(), interview.ModeStrict, "Dana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := sess.answer("I build Go services.", 8); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, _, err := sess.answer("We shipped a search rewrite.", 9); err != nil {
		t.Fatalf("answer: %v", err)
	}

	report, err := srv.finishSession(context.Background(), roomName, sess)
	if err != nil {
		t.Fatalf("finishSession: %v", err)
	}
	if report.ID == "" {
		t.Fatal("report has no ID")
	}
	if _, ok := srv.manager.get(roomName); ok {
		t.Fatal("session still live after finish")
	}

	stored, err := srv.store.GetReport(report.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if stored.ID != report.ID {
		t.Fatalf("stored ID = %q, want %q", stored.ID, report.ID)
	}

	if _, err := srv.store.GetSession(roomName); err != nil {
		t.Fatalf("GetSession: %v", err)
	}
}

func postSessions(t *testing.T, app *fiber.App, req createSessionRequest) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq := httptest.NewRequest("POST", "/sessions", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, respBody
}

func TestCreateSessionHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	app := fiber.New()
	srv.routes(app)

	status, body := postSessions(t, app, createSessionRequest{
		RoomName:   "http1",
		TemplateID: "backend",
		Mode:       "learning",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", status, fiber.StatusCreated, body)
	}
	var created createSessionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if created.RoomName != "http1" || created.Mode != "learning" {
		t.Fatalf("unexpected response %+v", created)
	}
	if len(created.Messages) == 0 {
		t.Fatal("no opening messages in response")
	}

	if status, _ := postSessions(t, app, createSessionRequest{RoomName: "http1"}); status != fiber.StatusConflict {
		t.Fatalf("duplicate room status = %d, want %d", status, fiber.StatusConflict)
	}
	if status, _ := postSessions(t, app, createSessionRequest{Mode: "casual"}); status != fiber.StatusBadRequest {
		t.Fatalf("bad mode status = %d, want %d", status, fiber.StatusBadRequest)
	}
	if status, _ := postSessions(t, app, createSessionRequest{TemplateID: "nope"}); status != fiber.StatusNotFound {
		t.Fatalf("unknown template status = %d, want %d", status, fiber.StatusNotFound)
	}
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	app := fiber.New()
	srv.routes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	var summaries []store.ReportSummary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("len(summaries) = %d, want 0", len(summaries))
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/reports/rep_missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing report status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}

func TestParseFlagsAndValidate(t *testing.T) {
	t.Setenv("PORT", "")

	fs := flag.NewFlagSet("interview-server", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Fatalf("Addr = %q, want :3000", cfg.Addr)
	}
	if cfg.DBPath != "interview.sqlite" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	t.Setenv("PORT", "8080")
	fs = flag.NewFlagSet("interview-server", flag.ContinueOnError)
	cfg, err = parseFlags(fs, []string{"-db", "./data/app.sqlite", "-model", "gpt-5-mini"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.DBPath != filepath.Join("data", "app.sqlite") {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}

	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate should reject empty DBPath")
	}
}
