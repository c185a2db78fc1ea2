package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGCreditBot/internal/models"
	"github.com/digkill/TGCreditBot/internal/telegram"
)

const (
	secretHeader = "X-Telegram-Bot-Api-Secret-Token"
	maxBodyBytes = 1 << 20
)

type Dispatcher interface {
	Dispatch(ctx context.Context, msg models.InboundMessage) models.Reply
}

type Messenger interface {
	Send(ctx context.Context, reply models.Reply) (tgbotapi.Message, error)
}

// Server receives Telegram updates and answers each with exactly one message.
type Server struct {
	addr       string
	secret     string
	log        *slog.Logger
	dispatcher Dispatcher
	bot        Messenger
	router     *chi.Mux
}

func NewServer(addr, secret string, log *slog.Logger, dispatcher Dispatcher, bot Messenger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:       addr,
		secret:     secret,
		log:        log,
		dispatcher: dispatcher,
		bot:        bot,
		router:     r,
	}
	r.Get("/", s.handleHealth)
	r.Post("/", s.handleUpdate)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("webhook shutdown error", "err", err)
		}
	}()

	s.log.Info("webhook listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook listen: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, world!"))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(s.secret)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&update); err != nil {
		s.log.Warn("decode update", "err", err)
		s.writeError(w, fmt.Errorf("decode update: %w", err))
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		s.log.Debug("update without message ignored", "update_id", update.UpdateID)
		s.writeError(w, errors.New("update carries no message"))
		return
	}

	ctx := r.Context()
	inbound := telegram.InboundFromMessage(msg)
	reply := s.dispatcher.Dispatch(ctx, inbound)

	sent, err := s.bot.Send(ctx, reply)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("reply delivered",
		"update_id", update.UpdateID,
		"telegram_id", inbound.From.ID,
		"kind", inbound.Kind,
		"reply_kind", reply.Kind,
	)
	s.writeJSON(w, sent)
}

// writeError answers with 200 so Telegram does not redeliver the update.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
