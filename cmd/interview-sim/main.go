// Command interview-sim replays a scripted set of answers through the
// interview turn machine and writes the resulting session file, ready for
// session-report. Useful for exercising templates and modes without a live
// session.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/hollowaylabs/interviewkit/interview"
	"github.com/hollowaylabs/interviewkit/interview/fileutils"
)

// simulatedWordsPerSecond approximates a conversational speaking rate for
// synthesized turn durations.
const simulatedWordsPerSecond = 2.5

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	var tpl interview.Template
	if cfg.TemplatePath != "" {
		if err := fileutils.ReadJSONFile(cfg.TemplatePath, &tpl); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
	}

	answers, err := readAnswers(cfg.AnswersPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if len(answers) == 0 {
		fmt.Fprintln(os.Stderr, "no answers found in -answers file")
		os.Exit(2)
	}

	roomName := cfg.RoomName
	if roomName == "" {
		roomName = "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	data := runSimulation(tpl, interview.Mode(cfg.Mode), roomName, cfg.ParticipantName, answers)

	if err := fileutils.WriteJSONFileAtomic(cfg.OutPath, data, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "session=%s room=%s mode=%s questions=%d followups=%d answers=%d\n",
		cfg.OutPath, roomName, cfg.Mode, data.QuestionCount, data.FollowUpCount, len(answers))
}

// runSimulation feeds the scripted answers through the flow, mirroring every
// turn into a collector, and returns the ended session snapshot.
func runSimulation(tpl interview.Template, mode interview.Mode, roomName, participant string, answers []string) interview.SessionData {
	flow := interview.NewFlow(tpl.Questions, mode)
	collector := interview.NewCollector(roomName, tpl.ID, tpl.Title, mode, participant)

	st, msgs := flow.Begin()
	recordMessages(collector, msgs)

	for _, answer := range answers {
		if flow.Done(st) {
			break
		}
		words := len(strings.Fields(answer))
		collector.RecordCandidateTurn(answer, float64(words)/simulatedWordsPerSecond)

		st, msgs = flow.RunTurn(st, answer)
		if n := len(st.Scores); n > 0 {
			collector.RecordScore(st.Scores[n-1])
		}
		recordMessages(collector, msgs)
	}

	return collector.EndSession()
}

func recordMessages(c *interview.Collector, msgs []interview.AgentMessage) {
	for _, m := range msgs {
		isQuestion := m.Kind == interview.MessagePlain
		isFollowup := m.Kind == interview.MessageFollowUp
		c.RecordInterviewerTurn(m.Text, isQuestion, isFollowup)
	}
}

// readAnswers reads one answer per non-empty line.
func readAnswers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open -answers: %w", err)
	}
	defer f.Close()

	var answers []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		answers = append(answers, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read -answers: %w", err)
	}
	return answers, nil
}
