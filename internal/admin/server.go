package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGCreditBot/internal/models"
	"github.com/digkill/TGCreditBot/internal/telegram"
)

const recentUsageLimit = 20

type Users interface {
	Find(ctx context.Context, telegramID int64) (*models.User, error)
	Grant(ctx context.Context, telegramID int64, amount int) (*models.User, error)
	ListTelegramIDs(ctx context.Context) ([]int64, error)
}

type UsageHistory interface {
	Recent(ctx context.Context, telegramID int64, limit int) ([]models.UsageRecord, error)
}

type Messenger interface {
	Send(ctx context.Context, reply models.Reply) (tgbotapi.Message, error)
}

type Server struct {
	addr     string
	username string
	password string
	log      *slog.Logger
	users    Users
	usage    UsageHistory
	bot      Messenger
	router   *chi.Mux
}

func NewServer(addr, username, password string, log *slog.Logger, users Users, usage UsageHistory, bot Messenger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:     addr,
		username: username,
		password: password,
		log:      log,
		users:    users,
		usage:    usage,
		bot:      bot,
		router:   r,
	}
	r.Group(func(protected chi.Router) {
		protected.Use(s.basicAuthMiddleware())
		protected.Post("/broadcast", s.handleBroadcast)
		protected.Route("/users/{telegramID}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Post("/credits", s.handleGrantCredits)
		})
	})
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("admin shutdown error", "err", err)
		}
	}()

	s.log.Info("admin panel listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin listen: %w", err)
	}
	return nil
}

type userResponse struct {
	User  *models.User         `json:"user"`
	Usage []models.UsageRecord `json:"usage"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "telegramID"))
	if err != nil {
		http.Error(w, "invalid telegram id", http.StatusBadRequest)
		return
	}

	user, err := s.users.Find(r.Context(), id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	usage, err := s.usage.Recent(r.Context(), id, recentUsageLimit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userResponse{User: user, Usage: usage})
}

type grantRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleGrantCredits(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "telegramID"))
	if err != nil {
		http.Error(w, "invalid telegram id", http.StatusBadRequest)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	user, err := s.users.Grant(r.Context(), id, req.Amount)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	s.log.Info("credit granted", "telegram_id", id, "amount", req.Amount, "credit", user.Credit)
	s.writeJSON(w, http.StatusOK, user)
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	ids, err := s.users.ListTelegramIDs(ctx)
	if err != nil {
		s.internalError(w, err)
		return
	}

	text := telegram.EscapeMarkdownLimit(req.Message, telegram.MaxMessageLength)
	count := 0
	for _, id := range ids {
		reply := models.Reply{Kind: models.ReplyText, ChatID: id, Text: text}
		if _, err := s.bot.Send(ctx, reply); err != nil {
			s.log.Error("send broadcast", "user", id, "err", err)
			continue
		}
		count++
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"sent":  count,
		"total": len(ids),
	})
}

func (s *Server) basicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !secureEqual(user, s.username) || !secureEqual(pass, s.password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="creditbot"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("admin handler error", "err", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}
