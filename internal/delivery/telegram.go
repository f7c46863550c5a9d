package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// telegramMessageLimit is the Bot API's maximum message length in runes.
const telegramMessageLimit = 4096

// Telegram sends reports through the Telegram Bot API. Documents longer
// than the message limit are split on line boundaries into multiple
// messages, sent in order.
type Telegram struct {
	httpClient *http.Client
	token      string
	chatID     string
	markdown   bool
	log        *logger.Logger
}

func NewTelegram(token, chatID string, markdown bool) *Telegram {
	return &Telegram{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      token,
		chatID:     chatID,
		markdown:   markdown,
		log:        logger.Default().WithPrefix("telegram"),
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Deliver(ctx context.Context, document string) error {
	parts := splitDocument(document, telegramMessageLimit)
	t.log.Debug("sending report in %d parts", len(parts))

	for i, part := range parts {
		if err := t.sendMessage(ctx, part); err != nil {
			t.log.Error("failed to send part %d/%d: %v", i+1, len(parts), err)
			return errors.NewDeliveryError(t.Name(), err)
		}
	}
	t.log.Info("report delivered in %d messages", len(parts))
	return nil
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	payload := map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	}
	if t.markdown {
		payload["parse_mode"] = "Markdown"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(respBody))
	}

	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram rejected message: %s", out.Description)
	}
	return nil
}

// splitDocument cuts a document into parts of at most limit runes,
// preferring line boundaries. A single line longer than the limit is hard
// split.
func splitDocument(document string, limit int) []string {
	if len([]rune(document)) <= limit {
		return []string{document}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			parts = append(parts, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(document, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		// +1 for the newline separator.
		if currentLen+len(runes)+1 > limit {
			flush()
		}
		current.WriteString(string(runes))
		current.WriteString("\n")
		currentLen += len(runes) + 1
	}
	flush()
	return parts
}
