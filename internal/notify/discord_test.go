package notify

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bgbahoue/yaxis-bot/internal/model"
)

func testNotifier(t *testing.T) *DiscordNotifier {
	t.Helper()
	notifier, err := NewDiscordNotifier(Config{
		WebhookID:       "123",
		WebhookToken:    "token",
		ExplorerBaseURL: "https://etherscan.io",
		Contract:        "0x4444444444444444444444444444444444444444",
		EmojiName:       "yaxis",
		EmojiID:         "999",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return notifier
}

func testEvent() model.TransferEvent {
	return model.TransferEvent{
		Hash:         "0xaaa",
		Timestamp:    1620000000, // 2021/5/03 00:00:00 UTC
		BlockNumber:  12345678,
		Value:        "1250000000000000000000",
		TokenSymbol:  "YAXIS",
		TokenDecimal: 18,
		Payload:      json.RawMessage(`{}`),
	}
}

func TestBuildEmbed(t *testing.T) {
	notifier := testNotifier(t)

	embed, err := notifier.buildEmbed(testEvent(), decimal.RequireFromString("1.57"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embed.URL != "https://etherscan.io/tx/0xaaa" {
		t.Fatalf("unexpected embed url: %q", embed.URL)
	}

	fields := map[string]string{}
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}

	if got := fields["Contract"]; got != "[0x4444444444444444444444444444444444444444](https://etherscan.io/address/0x4444444444444444444444444444444444444444)" {
		t.Fatalf("unexpected contract field: %q", got)
	}
	if got := fields["Timestamp"]; got != "2021/5/03 00:00:00" {
		t.Fatalf("unexpected timestamp field: %q", got)
	}
	if got := fields["Block"]; got != "12345678" {
		t.Fatalf("unexpected block field: %q", got)
	}
	if got := fields["YAXIS token value"]; got != "$1.57" {
		t.Fatalf("unexpected token value field: %q", got)
	}
	if got := fields["Nb YAXIS bought back"]; got != "<:yaxis:999> 1,250.00" {
		t.Fatalf("unexpected amount field: %q", got)
	}
	if got := fields["USD value"]; got != "$ 1,962.50" {
		t.Fatalf("unexpected usd field: %q", got)
	}
}

func TestBuildEmbedBadValue(t *testing.T) {
	notifier := testNotifier(t)

	event := testEvent()
	event.Value = "garbage"
	if _, err := notifier.buildEmbed(event, decimal.New(1, 0)); err == nil {
		t.Fatalf("expected error for unparseable value")
	}
}

func TestNewDiscordNotifierMissingWebhook(t *testing.T) {
	if _, err := NewDiscordNotifier(Config{}, nil); err == nil {
		t.Fatalf("expected error for missing webhook credentials")
	}
}

func TestGroupDigits(t *testing.T) {
	cases := map[string]string{
		"0.00":       "0.00",
		"12.34":      "12.34",
		"123.45":     "123.45",
		"1234.56":    "1,234.56",
		"1234567.89": "1,234,567.89",
		"-1234.56":   "-1,234.56",
		"1000000":    "1,000,000",
	}
	for in, want := range cases {
		if got := groupDigits(in); got != want {
			t.Fatalf("groupDigits(%q) = %q, want %q", in, got, want)
		}
	}
}
