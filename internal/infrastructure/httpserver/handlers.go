package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopmate/internal/domain"
	"shopmate/internal/ports"
	"shopmate/internal/services"
)

type handlers struct {
	chat  *services.ChatService
	store *services.ConversationStore
	log   ports.Logger
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply    string           `json:"reply"`
	Messages []domain.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) chatTurn(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	reply, err := h.chat.HandleMessage(r.Context(), req.Message)
	if err != nil {
		var failure *domain.Failure
		if errors.As(err, &failure) && failure.Kind == domain.FailValidation {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: failure.Error()})
			return
		}
		h.log.Error("chat turn failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	conv, _, err := h.store.Read(r.Context())
	if err != nil {
		h.log.Error("conversation read failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Messages: visibleMessages(conv)})
}

func (h *handlers) conversation(w http.ResponseWriter, r *http.Request) {
	conv, ok, err := h.store.Read(r.Context())
	if err != nil {
		h.log.Error("conversation read failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, chatResponse{Messages: []domain.Message{}})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Messages: visibleMessages(conv)})
}

func (h *handlers) clearConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.log.Error("conversation clear failed", err, nil)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// visibleMessages filters system-role messages out of the UI-facing list;
// they remain in provider-facing transcripts only.
func visibleMessages(conv domain.ConversationContext) []domain.Message {
	visible := make([]domain.Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		if msg.Role == domain.RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
