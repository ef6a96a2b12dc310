package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"helpdesk-triage/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const systemInstruction = `You are an IT help desk assistant for a corporate support service. Answer user requests using the knowledge base context supplied in the prompt. Be concise, professional and practical, and never invent company policies that are not in the context.`

// LLMService is the GigaChat-backed implementation of both external
// collaborators: chat generation through the gigago client and embeddings
// through the REST API with an OAuth access token.
type LLMService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string

	tokenMu     sync.Mutex
	accessToken string
}

func NewLLMService(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = systemInstruction
	model.Temperature = 0.7

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	service := &LLMService{
		client:     client,
		model:      model,
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		// GigaChat REST API, used directly for embeddings.
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL: "https://gigachat.devices.sberbank.ru/api/v1",
	}

	token, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	service.accessToken = token

	return service, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The API key is expected to already be Base64-encoded.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	logger.Info("Access token obtained", zap.Int("expires_in", oauthResp.ExpiresIn))
	return oauthResp.AccessToken, nil
}

// Generate produces a completion for the prompt, bounded by the configured
// generation timeout. Exactly one attempt is made per call.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GenerationTimeout)
	defer cancel()

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed requests an embedding vector for the text via the REST API.
// A 401 triggers one token refresh and retry.
func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, status, err := s.embedOnce(ctx, text)
	if status == http.StatusUnauthorized {
		if refreshErr := s.refreshToken(ctx); refreshErr != nil {
			return nil, fmt.Errorf("embedding failed with 401, token refresh also failed: %w", refreshErr)
		}
		vector, _, err = s.embedOnce(ctx, text)
	}
	return vector, err
}

func (s *LLMService) embedOnce(ctx context.Context, text string) ([]float32, int, error) {
	requestBody := map[string]interface{}{
		"model": s.config.EmbeddingModel,
		"input": []string{text},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("embeddings API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, resp.StatusCode, fmt.Errorf("empty embedding in response")
	}

	return embResp.Data[0].Embedding, resp.StatusCode, nil
}

func (s *LLMService) token() string {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.accessToken
}

func (s *LLMService) refreshToken(ctx context.Context) error {
	token, err := getAccessToken(ctx, s.config, s.httpClient, s.logger)
	if err != nil {
		return err
	}
	s.tokenMu.Lock()
	s.accessToken = token
	s.tokenMu.Unlock()
	return nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
