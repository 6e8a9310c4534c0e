package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NotifierService pushes marketplace events to the admin Telegram chat.
// An unconfigured notifier is a no-op so local setups work without a bot.
type NotifierService struct {
	botToken    string
	adminChatID string
	logger      *zap.Logger
}

// NewNotifierService creates a NotifierService.
func NewNotifierService(botToken, adminChatID string, logger *zap.Logger) *NotifierService {
	return &NotifierService{
		botToken:    botToken,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *NotifierService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("telegram send failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *NotifierService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// NewOrderNotification carries order data for the admin notification.
type NewOrderNotification struct {
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	VendorCount   int
	Items         []ItemNotification
	TotalAmount   decimal.Decimal
	PaymentMethod string
}

// ItemNotification is one order line in the notification.
type ItemNotification struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// FormatAmount renders a decimal amount with thousand separators.
func FormatAmount(amount decimal.Decimal) string {
	str := amount.StringFixed(2)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	dot := strings.IndexByte(str, '.')
	intPart, fracPart := str[:dot], str[dot:]

	var result strings.Builder
	length := len(intPart)
	for i, digit := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	formatted := result.String() + fracPart
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}

// NotifyNewOrder reports a freshly created order to the admin chat.
func (s *NotifierService) NotifyNewOrder(order NewOrderNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.Name,
			item.Quantity,
			FormatAmount(item.UnitPrice),
			FormatAmount(lineTotal),
		))
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>🏪 Vendors:</b> %d
<b>📦 Items:</b>
%s<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s`,
		order.OrderNumber,
		order.CustomerName,
		order.CustomerPhone,
		order.VendorCount,
		itemsList.String(),
		FormatAmount(order.TotalAmount),
		order.PaymentMethod,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifyOrderDelivered reports a completed delivery.
func (s *NotifierService) NotifyOrderDelivered(orderNumber string, total decimal.Decimal) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>✅ ORDER DELIVERED</b>
<b>📋 Order:</b> %s
<b>💰 Total:</b> %s
Vendor earnings for this order are now counted as paid.`,
		orderNumber,
		FormatAmount(total),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifySettlement reports a recorded payout.
func (s *NotifierService) NotifySettlement(vendorName string, amount decimal.Decimal, paymentMethod string) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>💸 SETTLEMENT RECORDED</b>
<b>🏪 Vendor:</b> %s
<b>💰 Amount:</b> %s
<b>💳 Method:</b> %s`,
		vendorName,
		FormatAmount(amount),
		paymentMethod,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
