package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/logger"
	"shopmate/internal/ports"
	"shopmate/internal/services"
)

type memoryRepo struct {
	records map[string]domain.ConversationContext
}

func (r *memoryRepo) Load(_ context.Context, session string) (domain.ConversationContext, bool, error) {
	conv, ok := r.records[session]
	return conv, ok, nil
}

func (r *memoryRepo) Save(_ context.Context, session string, conv domain.ConversationContext) error {
	r.records[session] = conv
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, session string) error {
	delete(r.records, session)
	return nil
}

type echoProvider struct{}

func (echoProvider) Name() string { return domain.ProviderClaude }

func (echoProvider) Complete(_ context.Context, req ports.ProviderRequest) (string, error) {
	last := req.Messages[len(req.Messages)-1]
	return "echo: " + last.Content, nil
}

type echoFactory struct{}

func (echoFactory) ForName(string) (ports.Provider, error) { return echoProvider{}, nil }

type deadFetcher struct{}

func (deadFetcher) Fetch(context.Context, string, domain.ExtractionProfile, time.Duration) (domain.FetchResult, error) {
	return domain.FetchResult{}, domain.NewFailure(domain.FailPolicyDenied, "fetch", "denied")
}

type noProducts struct{}

func (noProducts) Lookup(context.Context, string) (domain.Product, error) {
	return domain.Product{}, domain.NewFailure(domain.FailNotFound, "amazon", "absent")
}

func (noProducts) Search(context.Context, string) ([]domain.Product, error) { return nil, nil }

type alwaysOnline struct{}

func (alwaysOnline) Online(context.Context) bool { return true }

func testServer() *Server {
	log := logger.Nop()
	store := services.NewConversationStore(&memoryRepo{records: map[string]domain.ConversationContext{}}, "s1", log, nil)
	chat := &services.ChatService{
		Store:        store,
		Fetcher:      deadFetcher{},
		Products:     noProducts{},
		Providers:    echoFactory{},
		Connectivity: alwaysOnline{},
		Provider:     domain.ProviderSettings{Active: domain.ProviderClaude, SystemPrompt: "persona"},
		Search:       domain.SearchSettings{Endpoint: "https://html.duckduckgo.com/html/?q=%s"},
		Logger:       log,
	}
	return New(":0", chat, store, log)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatTurn(t *testing.T) {
	handler := testServer().Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello there"}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply    string           `json:"reply"`
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "echo: hello there", resp.Reply)
	require.Len(t, resp.Messages, 2)
	require.Equal(t, domain.RoleUser, resp.Messages[0].Role)
	require.Equal(t, domain.RoleAssistant, resp.Messages[1].Role)
}

func TestChatTurnRejectsBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader("{broken")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatTurnRejectsEmptyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"  "}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationLifecycle(t *testing.T) {
	handler := testServer().Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"reply":"","messages":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"first"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/conversation", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/conversation", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Messages)
}
