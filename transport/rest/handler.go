package rest

import (
	"chatline/auth"
	"chatline/observability"
	"chatline/services"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handler wires the REST surface: account management, profile, friends
// and conversation history. Realtime traffic goes through the websocket
// handler mounted on the same router.
type Handler struct {
	log            *slog.Logger
	auth           services.IAuthService
	profiles       services.IProfileService
	friends        services.IFriendService
	conversations  services.IConversationService
	monitoring     *observability.MonitoringManager
	ws             http.Handler
	allowedOrigins []string
}

func NewHandler(log *slog.Logger, authService services.IAuthService,
	profiles services.IProfileService, friends services.IFriendService,
	conversations services.IConversationService,
	monitoring *observability.MonitoringManager,
	ws http.Handler, allowedOrigins []string) *Handler {
	return &Handler{
		log:            log,
		auth:           authService,
		profiles:       profiles,
		friends:        friends,
		conversations:  conversations,
		monitoring:     monitoring,
		ws:             ws,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRouter builds the full HTTP surface, CORS included.
func (h *Handler) SetupRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auth/register", h.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(auth.Middleware)

	protected.Handle("/ws", h.ws).Methods(http.MethodGet)

	protected.HandleFunc("/profile/me", h.HandleMe).Methods(http.MethodGet)
	protected.HandleFunc("/profile/name", h.HandleUpdateName).Methods(http.MethodPut)
	protected.HandleFunc("/profile/avatar", h.HandleUpdateAvatar).Methods(http.MethodPut)

	protected.HandleFunc("/users", h.HandleContacts).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{otherUserId}", h.HandleHistory).Methods(http.MethodGet)
	protected.HandleFunc("/conversations/{otherUserId}/search", h.HandleSearch).Methods(http.MethodGet)

	protected.HandleFunc("/friends", h.HandleFriends).Methods(http.MethodGet)
	protected.HandleFunc("/friends/discover", h.HandleDiscover).Methods(http.MethodGet)
	protected.HandleFunc("/friends/requests", h.HandleSendRequest).Methods(http.MethodPost)
	protected.HandleFunc("/friends/requests", h.HandleIncomingRequests).Methods(http.MethodGet)
	protected.HandleFunc("/friends/requests/outgoing", h.HandleOutgoingRequests).Methods(http.MethodGet)
	protected.HandleFunc("/friends/requests/{id}/accept", h.HandleAcceptRequest).Methods(http.MethodPost)
	protected.HandleFunc("/friends/requests/{id}/reject", h.HandleRejectRequest).Methods(http.MethodPost)
	protected.HandleFunc("/friends/requests/{id}", h.HandleCancelRequest).Methods(http.MethodDelete)

	protected.HandleFunc("/stats", h.HandleStats).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Register(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	user, err := h.profiles.Me(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

type updateNameRequest struct {
	DisplayName string `json:"display_name"`
}

func (h *Handler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req updateNameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.profiles.UpdateDisplayName(userID, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// HandleUpdateAvatar takes the raw image bytes as the request body; the
// service sniffs the real content type.
func (h *Handler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body too large"})
		return
	}

	user, err := h.profiles.UpdateAvatar(userID, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (h *Handler) HandleContacts(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	summaries, err := h.conversations.FriendsWithLastMessage(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	otherID := mux.Vars(r)["otherUserId"]

	messages, err := h.conversations.History(userID, otherID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	otherID := mux.Vars(r)["otherUserId"]

	terms := r.URL.Query().Get("q")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	hits, err := h.conversations.Search(r.Context(), userID, otherID, terms, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

func (h *Handler) HandleFriends(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	friends, err := h.friends.Friends(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *Handler) HandleDiscover(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	candidates, err := h.friends.Discover(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

type sendRequestBody struct {
	ReceiverID string `json:"receiver_user_id"`
}

func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var body sendRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}

	request, err := h.friends.SendRequest(r.Context(), userID, body.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *Handler) HandleIncomingRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	requests, err := h.friends.Incoming(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) HandleOutgoingRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	requests, err := h.friends.Outgoing(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	request, err := h.friends.Accept(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	request, err := h.friends.Reject(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *Handler) HandleCancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := h.requestID(w, r)
	if !ok {
		return
	}

	if err := h.friends.Cancel(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitoring.GetLatest())
}
