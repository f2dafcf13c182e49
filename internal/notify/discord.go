package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bgbahoue/yaxis-bot/internal/datetime"
	"github.com/bgbahoue/yaxis-bot/internal/model"
)

const embedColor = 0x0099ff

// Config holds settings for the Discord webhook publisher.
type Config struct {
	WebhookID       string
	WebhookToken    string
	ExplorerBaseURL string
	Contract        string
	LogoURL         string
	EmojiName       string
	EmojiID         string
}

// DiscordNotifier publishes buyback notifications through a Discord
// webhook, one embed per transfer event.
type DiscordNotifier struct {
	cfg     Config
	session *discordgo.Session
	logger  *zap.Logger
}

func NewDiscordNotifier(cfg Config, logger *zap.Logger) (*DiscordNotifier, error) {
	if cfg.WebhookID == "" || cfg.WebhookToken == "" {
		return nil, fmt.Errorf("webhook id and token are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Webhook execution is unauthenticated, so the session carries no
	// bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &DiscordNotifier{cfg: cfg, session: session, logger: logger}, nil
}

// Publish sends one buyback notification for a persisted event.
func (n *DiscordNotifier) Publish(ctx context.Context, event model.TransferEvent, price decimal.Decimal) error {
	embed, err := n.buildEmbed(event, price)
	if err != nil {
		return fmt.Errorf("build embed for %s: %w", event.Hash, err)
	}

	n.logger.Debug("posting transaction", zap.String("hash", event.Hash))

	_, err = n.session.WebhookExecute(n.cfg.WebhookID, n.cfg.WebhookToken, false, &discordgo.WebhookParams{
		Content:  "Buyback successfully executed",
		Username: "MetaVault",
		Embeds:   []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("execute webhook for %s: %w", event.Hash, err)
	}
	return nil
}

func (n *DiscordNotifier) buildEmbed(event model.TransferEvent, price decimal.Decimal) (*discordgo.MessageEmbed, error) {
	amount, err := event.TokenAmount()
	if err != nil {
		return nil, err
	}
	usd, err := event.USDValue(price)
	if err != nil {
		return nil, err
	}

	contractURL := n.cfg.ExplorerBaseURL + "/address/" + n.cfg.Contract
	txURL := n.cfg.ExplorerBaseURL + "/tx/" + event.Hash
	emoji := fmt.Sprintf("<:%s:%s>", n.cfg.EmojiName, n.cfg.EmojiID)

	return &discordgo.MessageEmbed{
		Title: "Transaction details",
		URL:   txURL,
		Color: embedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name: "MetaVault v2",
			URL:  contractURL,
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: n.cfg.LogoURL},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Contract", Value: mdLink(n.cfg.Contract, contractURL)},
			{Name: "Transaction hash", Value: mdLink(event.Hash, txURL)},
			{Name: "Timestamp", Value: datetime.Parse(event.Timestamp).String(), Inline: true},
			{Name: "Block", Value: fmt.Sprintf("%d", event.BlockNumber), Inline: true},
			{Name: fmt.Sprintf("%s token value", event.TokenSymbol), Value: "$" + groupDigits(price.StringFixed(2)), Inline: true},
			{Name: fmt.Sprintf("Nb %s bought back", event.TokenSymbol), Value: emoji + " " + groupDigits(amount.StringFixed(2)), Inline: true},
			{Name: "USD value", Value: "$ " + groupDigits(usd.StringFixed(2)), Inline: true},
		},
	}, nil
}

func mdLink(text, url string) string {
	if url == "" {
		url = text
	}
	return "[" + text + "](" + url + ")"
}

// groupDigits inserts thousands separators into the integer part of a
// fixed-point decimal string.
func groupDigits(value string) string {
	intPart := value
	rest := ""
	if i := strings.IndexByte(value, '.'); i >= 0 {
		intPart, rest = value[:i], value[i:]
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + rest
}
