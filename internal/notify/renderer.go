package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/cozybakes/storefront/internal/domain"
)

// Renderer produces the self-contained confirmation message. The message is
// rebuilt from the payload on every attempt; nothing rendered is persisted.
type Renderer struct {
	brand   string
	tagline string
	tmpl    *template.Template
}

func NewRenderer(brand string) *Renderer {
	tmpl := template.Must(template.New("confirmation").Funcs(template.FuncMap{
		"usd":  formatUSD,
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
	}).Parse(confirmationTemplate))

	return &Renderer{
		brand:   brand,
		tagline: "Fresh baked goods, made to order",
		tmpl:    tmpl,
	}
}

func (r *Renderer) Subject(payload *domain.NotificationPayload) string {
	return fmt.Sprintf("Order Confirmation - %s (#%s)", r.brand, payload.OrderReference)
}

func (r *Renderer) Render(payload *domain.NotificationPayload) (string, error) {
	data := struct {
		Brand   string
		Tagline string
		*domain.NotificationPayload
	}{
		Brand:               r.brand,
		Tagline:             r.tagline,
		NotificationPayload: payload,
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return b.String(), nil
}

func formatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

const confirmationTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #8B4513; margin: 0;">{{.Brand}}</h1>
    <p style="color: #666; margin: 5px 0;">{{.Tagline}}</p>
  </div>

  <h2 style="color: #8B4513;">Order Confirmation</h2>

  <p>Dear {{.CustomerName}},</p>

  <p>Thank you for your order! We're excited to start baking your fresh treats. Your order details are below:</p>

  <div style="background: #f9f9f9; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #8B4513;">Order #{{.OrderReference}}</h3>
    <p><strong>Order Date:</strong> {{date .OrderDate}}</p>
    <p><strong>Delivery Address:</strong> {{.DeliveryAddress}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    {{if .SpecialInstructions}}<p><strong>Special Instructions:</strong> {{.SpecialInstructions}}</p>{{end}}
  </div>

  <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
    <thead>
      <tr style="background: #8B4513; color: white;">
        <th style="padding: 12px; text-align: left;">Item</th>
        <th style="padding: 12px; text-align: center;">Qty</th>
        <th style="padding: 12px; text-align: right;">Price</th>
        <th style="padding: 12px; text-align: right;">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}<tr>
        <td style="padding: 12px; border-bottom: 1px solid #eee;">{{.ProductName}}</td>
        <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
        <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{usd .UnitPrice}}</td>
        <td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{usd .LineTotal}}</td>
      </tr>
      {{end}}<tr style="background: #f9f9f9; font-weight: bold;">
        <td colspan="3" style="padding: 12px; text-align: right;">Total:</td>
        <td style="padding: 12px; text-align: right;">{{usd .Total}}</td>
      </tr>
    </tbody>
  </table>

  <div style="background: #e8f5e8; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #2d5a2d;">What happens next?</h3>
    <ul style="margin: 0; padding-left: 20px;">
      <li>We'll start baking your order fresh to ensure maximum quality</li>
      <li>Your order will be ready for delivery within 2-3 hours</li>
      <li>We'll send you an update when your order is out for delivery</li>
    </ul>
  </div>

  <p>If you have any questions about your order, please don't hesitate to contact us.</p>

  <p>Thank you for choosing {{.Brand}}!</p>

  <div style="text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 14px;">
    <p>{{.Brand}} - Fresh baked goods made with love</p>
  </div>
</div>
`
