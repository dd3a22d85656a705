package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/hollowaylabs/interviewkit/interview"
	"github.com/hollowaylabs/interviewkit/interview/store"
)

type server struct {
	manager   *sessionManager
	store     *store.Store
	generator *interview.ReportGenerator
	templates map[string]interview.Template
}

func newServer(db *store.Store, generator *interview.ReportGenerator, templates []interview.Template) *server {
	byID := make(map[string]interview.Template, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	return &server{
		manager:   newSessionManager(),
		store:     db,
		generator: generator,
		templates: byID,
	}
}

func (s *server) routes(app *fiber.App) {
	app.Post("/sessions", s.createSession)
	app.Get("/templates", s.listTemplates)
	app.Get("/reports", s.listReports)
	app.Get("/reports/:id", s.getReport)
	app.Get("/ws/:room", s.wsUpgrade, websocket.New(s.handleWS))
}

type createSessionRequest struct {
	RoomName        string `json:"roomName"`
	TemplateID      string `json:"templateId"`
	Mode            string `json:"mode"`
	ParticipantName string `json:"participantName"`
}

type createSessionResponse struct {
	RoomName string                    `json:"roomName"`
	Mode     string                    `json:"mode"`
	Messages []interview.AgentMessage  `json:"messages"`
}

func (s *server) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	mode := interview.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	switch mode {
	case interview.ModeLearning, interview.ModeStrict:
	case "":
		mode = interview.ModeStrict
	default:
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid mode %q", req.Mode))
	}

	var tpl interview.Template
	if req.TemplateID != "" {
		t, ok := s.templates[req.TemplateID]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown template %q", req.TemplateID))
		}
		tpl = t
	}

	roomName, _, msgs, err := s.manager.create(req.RoomName, tpl, mode, req.ParticipantName)
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(createSessionResponse{
		RoomName: roomName,
		Mode:     string(mode),
		Messages: msgs,
	})
}

func (s *server) listTemplates(c *fiber.Ctx) error {
	out := make([]interview.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	return c.JSON(out)
}

func (s *server) listReports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	reports, err := s.store.ListReports(limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if reports == nil {
		reports = []store.ReportSummary{}
	}
	return c.JSON(reports)
}

func (s *server) getReport(c *fiber.Ctx) error {
	report, err := s.store.GetReport(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "report not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(report)
}

func (s *server) wsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// clientEvent is one inbound websocket message.
type clientEvent struct {
	Type            string  `json:"type"`
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// serverEvent is one outbound websocket message.
type serverEvent struct {
	Type     string                     `json:"type"`
	Messages []interview.AgentMessage   `json:"messages,omitempty"`
	Done     bool                       `json:"done,omitempty"`
	Report   *interview.InterviewReport `json:"report,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

// handleWS runs the answer loop for one connected candidate. The session
// must already exist via POST /sessions.
func (s *server) handleWS(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	roomName := c.Params("room")
	sess, ok := s.manager.get(roomName)
	if !ok {
		_ = c.WriteJSON(serverEvent{Type: "error", Error: "no live session for room " + roomName})
		return
	}

	for {
		var ev clientEvent
		if err := c.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Type {
		case "answer":
			msgs, done, err := sess.answer(ev.Text, ev.DurationSeconds)
			if err != nil {
				_ = c.WriteJSON(serverEvent{Type: "error", Error: err.Error()})
				continue
			}
			_ = c.WriteJSON(serverEvent{Type: "messages", Messages: msgs, Done: done})
			if done {
				s.finish(c, roomName, sess)
				return
			}

		case "end":
			s.finish(c, roomName, sess)
			return

		default:
			_ = c.WriteJSON(serverEvent{Type: "error", Error: fmt.Sprintf("unknown event type %q", ev.Type)})
		}
	}
}

// finish ends the session, persists it, generates the report, and sends it
// back before the connection closes.
func (s *server) finish(c *websocket.Conn, roomName string, sess *liveSession) {
	report, err := s.finishSession(context.Background(), roomName, sess)
	if err != nil {
		log.Printf("finish session %s: %v", roomName, err)
	}
	_ = c.WriteJSON(serverEvent{Type: "report", Report: &report, Done: true})
}

// finishSession is the transport-independent tail of a session: snapshot,
// persist, analyze. A generation error still yields a usable report with
// degraded defaults, so it is returned alongside the report.
func (s *server) finishSession(ctx context.Context, roomName string, sess *liveSession) (interview.InterviewReport, error) {
	data := sess.end()
	s.manager.remove(roomName)

	if err := s.store.SaveSession(data); err != nil {
		return interview.InterviewReport{}, err
	}

	report, genErr := s.generator.Generate(ctx, data, nil, sess.questions)
	if err := s.store.SaveReport(roomName, report); err != nil {
		return report, err
	}
	return report, genErr
}
