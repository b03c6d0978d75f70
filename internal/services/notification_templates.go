package services

import (
	"bytes"
	"fmt"
	"html/template"

	"returns-service/internal/models"
)

// ReturnEmail is a rendered status notification
type ReturnEmail struct {
	Subject string
	HTML    string
}

type emailData struct {
	CustomerName string
	OrderNumber  string
	StoreName    string
}

const emailFooter = `
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #666; font-size: 12px;">Este email foi enviado por {{.StoreName}}</p>
</div>`

var approvedEmailTemplate = template.Must(template.New("approved").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #22c55e;">Solicitação Aprovada ✓</h1>
  <p>Olá <strong>{{.CustomerName}}</strong>,</p>
  <p>Sua solicitação de troca/devolução para o pedido <strong>#{{.OrderNumber}}</strong> foi <strong style="color: #22c55e;">aprovada</strong>.</p>
  <p>Próximos passos:</p>
  <ol>
    <li>Embale o(s) produto(s) de forma segura</li>
    <li>Aguarde o contato da loja com instruções de envio</li>
    <li>Envie o(s) produto(s) conforme orientação</li>
  </ol>
  <p>Em caso de dúvidas, entre em contato com a loja.</p>` + emailFooter))

var rejectedEmailTemplate = template.Must(template.New("rejected").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #ef4444;">Solicitação Não Aprovada</h1>
  <p>Olá <strong>{{.CustomerName}}</strong>,</p>
  <p>Infelizmente, sua solicitação de troca/devolução para o pedido <strong>#{{.OrderNumber}}</strong> não pôde ser aprovada no momento.</p>
  <p>Isso pode ter ocorrido por diversos motivos, como:</p>
  <ul>
    <li>Prazo de devolução excedido</li>
    <li>Produto não elegível para troca/devolução</li>
    <li>Informações incompletas</li>
  </ul>
  <p>Para mais informações, entre em contato diretamente com a loja.</p>` + emailFooter))

var completedEmailTemplate = template.Must(template.New("completed").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #3b82f6;">Processo Concluído ✓</h1>
  <p>Olá <strong>{{.CustomerName}}</strong>,</p>
  <p>O processo de troca/devolução do pedido <strong>#{{.OrderNumber}}</strong> foi <strong style="color: #3b82f6;">concluído com sucesso</strong>.</p>
  <p>Caso tenha optado por:</p>
  <ul>
    <li><strong>Reembolso:</strong> O valor será creditado em até 10 dias úteis</li>
    <li><strong>Crédito na loja:</strong> Já está disponível para uso</li>
  </ul>
  <p>Agradecemos pela preferência!</p>` + emailFooter))

// BuildReturnEmail renders the email for a notifiable status
func BuildReturnEmail(status models.ReturnStatus, customerName, orderNumber, storeName string) (*ReturnEmail, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch status {
	case models.ReturnStatusApproved:
		tmpl = approvedEmailTemplate
		subject = fmt.Sprintf("Sua solicitação de troca/devolução foi aprovada - Pedido #%s", orderNumber)
	case models.ReturnStatusRejected:
		tmpl = rejectedEmailTemplate
		subject = fmt.Sprintf("Atualização sobre sua solicitação - Pedido #%s", orderNumber)
	case models.ReturnStatusCompleted:
		tmpl = completedEmailTemplate
		subject = fmt.Sprintf("Troca/devolução concluída - Pedido #%s", orderNumber)
	default:
		return nil, fmt.Errorf("no email template for status %q", status)
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, emailData{
		CustomerName: customerName,
		OrderNumber:  orderNumber,
		StoreName:    storeName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render %s email: %w", status, err)
	}

	return &ReturnEmail{Subject: subject, HTML: buf.String()}, nil
}
