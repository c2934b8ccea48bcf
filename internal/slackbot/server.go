package slackbot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Server terminates Slack's outbound HTTP traffic: Events API callbacks
// and block-action interactions, plus a small ops surface.
type Server struct {
	httpServer    *http.Server
	handlers      *Handlers
	signingSecret string
	logger        *slog.Logger
}

// NewServer creates the HTTP server for Slack callbacks
func NewServer(addr, signingSecret string, handlers *Handlers, logger *slog.Logger) *Server {
	s := &Server{
		handlers:      handlers,
		signingSecret: signingSecret,
		logger:        logger.With("component", "http_server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/slack/events", s.handleEvents)
	r.Post("/slack/interactions", s.handleInteractions)
	r.Get("/ops/deadletters", s.handleDeadLetters)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/tenants", handlers.CreateTenant)
		r.Post("/domains", handlers.CreateDomain)
		r.Post("/channels", handlers.CreateChannelConfig)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// verifiedBody reads the request body and checks Slack's request
// signature against it.
func (s *Server) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		http.Error(w, "bad signature headers", http.StatusBadRequest)
		return nil, false
	}
	if _, err := verifier.Write(body); err != nil {
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return nil, false
	}
	if err := verifier.Ensure(); err != nil {
		s.logger.Warn("rejected request with invalid signature", "path", r.URL.Path)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		http.Error(w, "failed to parse event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "failed to parse challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		// Ack within Slack's deadline; the mention is handled async.
		w.WriteHeader(http.StatusOK)

		if mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
			teamID := event.TeamID
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()
				s.handlers.HandleMention(ctx, teamID, mention)
			}()
		}

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verifiedBody(w, r)
	if !ok {
		return
	}

	// Interaction payloads arrive form-encoded with a single json field.
	values, err := parseForm(body)
	if err != nil {
		http.Error(w, "failed to parse payload", http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(values.Get("payload")), &callback); err != nil {
		http.Error(w, "failed to parse interaction", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	if callback.Type == slack.InteractionTypeBlockActions {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			s.handlers.HandleBlockActions(ctx, &callback)
		}()
	}
}

func parseForm(body []byte) (url.Values, error) {
	return url.ParseQuery(string(body))
}

func (s *Server) handleDeadLetters(w http.ResponseWriter, r *http.Request) {
	records, err := s.handlers.ListDeadLetters(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list dead letters", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
