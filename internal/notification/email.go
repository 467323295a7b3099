package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/habscollection/storefront/internal/entity"
)

// EmailNotifier sends the order-confirmation email over SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func NewEmailNotifier(host string, port int, username, password, from string) (*EmailNotifier, error) {
	tmpl, err := template.New("order-confirmation").Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		tmpl:   tmpl,
	}, nil
}

type emailItem struct {
	Name     string
	Size     string
	Quantity int
	Price    string
	Total    string
}

type emailData struct {
	FirstName string
	OrderID   string
	OrderDate string
	Items     []emailItem
	Subtotal  string
	Shipping  string
	Total     string
	Address   entity.Address
}

func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, order *entity.Order) error {
	data := emailData{
		FirstName: order.Customer.FirstName,
		OrderID:   order.OrderID,
		OrderDate: order.CreatedAt.Format("02 Jan 2006"),
		Subtotal:  fmt.Sprintf("£%.2f", order.Subtotal),
		Total:     fmt.Sprintf("£%.2f", order.Total),
		Address:   order.Customer.Address,
	}
	if order.Shipping > 0 {
		data.Shipping = fmt.Sprintf("£%.2f", order.Shipping)
	} else {
		data.Shipping = "FREE"
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, emailItem{
			Name:     item.Name,
			Size:     item.Size,
			Quantity: item.Quantity,
			Price:    fmt.Sprintf("%.2f", item.Price),
			Total:    fmt.Sprintf("%.2f", item.Price*float64(item.Quantity)),
		})
	}

	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("%w: failed to render template: %v", entity.ErrNotification, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", order.Customer.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Your Habs Collection Order %s", order.OrderID))
	msg.SetBody("text/html", body.String())

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrNotification, err)
	}
	return nil
}

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Thank you for your order, {{.FirstName}}!</h2>
  <p>Order <strong>{{.OrderID}}</strong> placed on {{.OrderDate}}.</p>
  <table width="100%" cellpadding="6" style="border-collapse: collapse;">
    <tr style="border-bottom: 1px solid #ddd;">
      <th align="left">Item</th><th>Size</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th>
    </tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}</td><td align="center">{{.Size}}</td><td align="center">{{.Quantity}}</td>
      <td align="right">£{{.Price}}</td><td align="right">£{{.Total}}</td>
    </tr>
    {{end}}
  </table>
  <p>
    Subtotal: {{.Subtotal}}<br>
    Shipping: {{.Shipping}}<br>
    <strong>Total: {{.Total}}</strong>
  </p>
  <p>
    Shipping to:<br>
    {{.Address.Line1}}<br>
    {{.Address.City}} {{.Address.Postcode}}<br>
    {{.Address.Country}}
  </p>
</body>
</html>`
