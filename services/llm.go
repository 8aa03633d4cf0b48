package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// LLMService - Ollama 로 단계 해설 문장을 다듬는다
type LLMService struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewLLMService - baseURL 이 비어 있으면 nil (템플릿 해설만 사용)
func NewLLMService(baseURL, model string) *LLMService {
	if baseURL == "" {
		return nil
	}
	if model == "" {
		model = "llama3.2"
	}
	log.Printf("✅ LLMService 초기화 (provider=ollama, baseURL=%s, model=%s)", baseURL, model)
	return &LLMService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

const captionSystemPrompt = `You narrate an EV charging robot docking simulation.
Rewrite the given caption as one short, vivid sentence for an on-screen overlay.
Keep it factual. No emojis. No quotes.`

// Rewrite - 템플릿 해설을 한 문장으로 다시 쓴다
func (s *LLMService) Rewrite(ctx context.Context, caption string) (string, error) {
	if s == nil {
		return "", ErrLLMDisabled
	}
	out, err := s.callOllama(ctx, captionSystemPrompt, caption)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *LLMService) callOllama(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	body := map[string]interface{}{
		"model":  s.Model,
		"prompt": systemPrompt + "\n\n" + userPrompt,
		"stream": false,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ollama 요청 JSON 마샬링 실패: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("ollama 요청 생성 실패: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama 호출 실패: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama 응답 읽기 실패: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama 응답 코드 %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return "", fmt.Errorf("ollama 응답 파싱 실패: %w (body=%s)", err, string(b))
	}
	if result.Response == "" {
		return "", fmt.Errorf("ollama 응답이 비어있습니다: %s", string(b))
	}

	log.Printf("⏱️ Ollama 응답 시간: %.2f초 (모델: %s)", time.Since(start).Seconds(), s.Model)
	return result.Response, nil
}
