// Package whatsapp builds the order message a cash customer sends to the
// restaurant and the wa.me link that opens it.
package whatsapp

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type Item struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Order struct {
	BusinessName  string
	CustomerName  string
	CustomerPhone string
	Neighborhood  string
	Address       string
	PaymentLabel  string
	Items         []Item
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	Notes         string
}

// FormatBRL renders d with two decimals and a comma separator, e.g. "25,00".
func FormatBRL(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// BuildOrderMessage renders the order in the restaurant's WhatsApp format.
func BuildOrderMessage(o Order) string {
	var sb strings.Builder

	sb.WriteString("🛍️ *NOVO PEDIDO - " + o.BusinessName + "*\n\n")
	sb.WriteString("👤 *Cliente:* " + o.CustomerName + "\n")
	sb.WriteString("📱 *Telefone:* " + o.CustomerPhone + "\n")
	sb.WriteString("📍 *Bairro:* " + o.Neighborhood + "\n")
	sb.WriteString("🏠 *Endereço:* " + o.Address + "\n")
	sb.WriteString("💳 *Pagamento:* " + o.PaymentLabel + "\n\n")

	sb.WriteString("📋 *ITENS DO PEDIDO:*\n")
	for _, it := range o.Items {
		sb.WriteString("• ")
		sb.WriteString(strconv.Itoa(it.Quantity))
		sb.WriteString("x " + it.Name + " - R$ " + FormatBRL(it.UnitPrice) + "\n")
	}

	sb.WriteString("\n💰 *RESUMO:*\n")
	sb.WriteString("Subtotal: R$ " + FormatBRL(o.Subtotal) + "\n")
	sb.WriteString("Taxa de entrega: R$ " + FormatBRL(o.DeliveryFee) + "\n")
	sb.WriteString("*Total: R$ " + FormatBRL(o.Total) + "*\n")

	if strings.TrimSpace(o.Notes) != "" {
		sb.WriteString("\n📝 *Observações:* " + o.Notes)
	}
	return sb.String()
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// Link returns the wa.me URL for a Brazilian number with message prefilled.
// Spaces are encoded as %20 rather than '+'.
func Link(number, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/55" + Digits(number) + "?text=" + text
}
