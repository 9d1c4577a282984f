package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/ambience/internal/domain"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	WebhookURL string
	SessionID  string
	Timeout    time.Duration
}

// Simulator plays the NLU platform: it sends one webhook call per user turn
// and keeps the session id stable across the conversation.
type Simulator struct {
	config *SimulatorConfig
	client *fasthttp.Client
	out    io.Writer
	log    *zap.Logger
}

// NewSimulator creates a new conversation simulator
func NewSimulator(config *SimulatorConfig, out io.Writer, log *zap.Logger) *Simulator {
	if config.SessionID == "" {
		config.SessionID = "simulator-" + uuid.NewString()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Simulator{
		config: config,
		client: &fasthttp.Client{
			Name:         "ambience-simulator",
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
		out: out,
		log: log,
	}
}

// Send posts one turn and returns the decoded fulfillment response.
func (s *Simulator) Send(intent, queryText string, params map[string]interface{}) (*domain.Response, error) {
	body, err := json.Marshal(handlers.WebhookRequest{
		Session: s.config.SessionID,
		QueryResult: handlers.QueryResult{
			QueryText:  queryText,
			Intent:     handlers.IntentRef{DisplayName: intent},
			Parameters: params,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.config.WebhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	start := time.Now()
	if err := s.client.DoTimeout(req, resp, s.config.Timeout); err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	s.log.Debug("Turn sent",
		zap.String("intent", intent),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), resp.Body())
	}

	var out domain.Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// Turn sends one turn and prints the reply.
func (s *Simulator) Turn(intent, queryText string, params map[string]interface{}) {
	fmt.Fprintf(s.out, "you> %s\n", queryText)
	resp, err := s.Send(intent, queryText, params)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.print(resp)
}

func (s *Simulator) print(resp *domain.Response) {
	for _, f := range resp.Fragments {
		switch f.Type {
		case domain.FragmentSimpleResponse:
			fmt.Fprintf(s.out, "bot> %s\n", f.Simple.Speech)
		case domain.FragmentText:
			fmt.Fprintf(s.out, "bot> %s\n", f.Text)
		case domain.FragmentMedia:
			fmt.Fprintf(s.out, "  [media] %s <%s>\n", f.Media.Title, f.Media.URL)
		case domain.FragmentBasicCard:
			fmt.Fprintf(s.out, "  [card] %s - %s\n", f.Card.Title, f.Card.Subtitle)
		case domain.FragmentSuggestions:
			fmt.Fprintf(s.out, "  [chips] %s\n", strings.Join(f.Suggestions, " | "))
		case domain.FragmentSessionEntities:
			fmt.Fprintf(s.out, "  [entities] %d titles, %d genres, %d tags\n",
				len(f.SessionEntities[domain.ParamTitle]),
				len(f.SessionEntities[domain.ParamGenre]),
				len(f.SessionEntities[domain.ParamTag]))
		}
	}
}

// Command maps one simulator input line onto an intent and its parameters.
func Command(line string) (intent, query string, params map[string]interface{}, ok bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", "", nil, false
	}
	cmd := strings.ToLower(parts[0])
	rest := strings.Join(parts[1:], " ")
	params = map[string]interface{}{}

	switch cmd {
	case "hi", "welcome":
		return domain.IntentWelcome, line, params, true
	case "help":
		return domain.IntentHelp, line, params, true
	case "play":
		params[domain.ParamSearch] = rest
		return domain.IntentPlay, line, params, true
	case "search":
		params[domain.ParamSearch] = rest
		return domain.IntentSearch, line, params, true
	case "title", "genre", "tag":
		params[cmd] = rest
		return domain.IntentPlayEntity, "play " + rest, params, true
	case "repeat":
		return domain.IntentRepeat, line, params, true
	case "current":
		return domain.IntentCurrent, "what's playing", params, true
	case "new":
		return domain.IntentNew, "what's new", params, true
	case "bye", "goodbye":
		return domain.IntentGoodbye, line, params, true
	case "finished":
		params[domain.ParamMediaStatus] = domain.MediaStatusFinished
		return domain.IntentMediaStatus, "", params, true
	default:
		return domain.IntentFallback, line, params, true
	}
}

// RunScript replays a fixed demo conversation.
func (s *Simulator) RunScript(lines []string) {
	for _, line := range lines {
		intent, query, params, ok := Command(line)
		if !ok {
			continue
		}
		s.Turn(intent, query, params)
	}
}

// RunInteractive reads commands from in until EOF or "quit".
func (s *Simulator) RunInteractive(in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return
		}

		intent, query, params, ok := Command(line)
		if ok {
			s.Turn(intent, query, params)
		}
		fmt.Fprint(s.out, "> ")
	}
}
