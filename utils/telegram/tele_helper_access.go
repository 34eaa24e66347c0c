package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"access-system/domain/constants"
)

const ButtonJoinGroup = "Entrar no grupo"

// MessageData is everything a template may print.
type MessageData struct {
	PlanTitle     string
	Amount        int64
	ExpiresAt     *time.Time
	DaysRemaining int
	InviteLink    string
	PixCode       string
	PixExpiresAt  *time.Time
	Reason        string
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 dia"
	}
	return fmt.Sprintf("%d dias", n)
}

func Approved(d MessageData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Pagamento aprovado!</b>\n\nPlano: <b>%s</b>\nValor: %s\n", Escape(d.PlanTitle), FormatBRL(d.Amount))
	if d.ExpiresAt != nil {
		fmt.Fprintf(&b, "Acesso válido até: %s (%s)\n", FormatDate(*d.ExpiresAt), pluralDays(d.DaysRemaining))
	}
	if d.InviteLink != "" {
		fmt.Fprintf(&b, "\nUse o botão abaixo para entrar no grupo:\n%s", Escape(d.InviteLink))
	} else {
		fmt.Fprintf(&b, "\n%s", constants.MsgLinkDeferred)
	}
	return b.String()
}

func ExpiringSoon(d MessageData) string {
	expires := ""
	if d.ExpiresAt != nil {
		expires = FormatDate(*d.ExpiresAt)
	}
	return fmt.Sprintf(`⏳ <b>Seu acesso está acabando</b>

O plano <b>%s</b> expira em %s, no dia %s.
Renove para continuar no grupo.`,
		Escape(d.PlanTitle),
		pluralDays(d.DaysRemaining),
		expires,
	)
}

func Expired(d MessageData) string {
	expires := ""
	if d.ExpiresAt != nil {
		expires = " em " + FormatDate(*d.ExpiresAt)
	}
	return fmt.Sprintf(`⌛ <b>Seu acesso expirou</b>

O plano <b>%s</b> expirou%s.
Para voltar ao grupo, faça uma nova assinatura.`,
		Escape(d.PlanTitle),
		expires,
	)
}

func PaymentFailed(d MessageData) string {
	return fmt.Sprintf(`❌ <b>Pagamento não aprovado</b>

Não foi possível confirmar o pagamento de %s do plano <b>%s</b>.
Você pode tentar novamente quando quiser.`,
		FormatBRL(d.Amount),
		Escape(d.PlanTitle),
	)
}

func PixExpired(d MessageData) string {
	return fmt.Sprintf(`⌛ <b>PIX expirado</b>

O código PIX de %s do plano <b>%s</b> expirou sem pagamento.
Gere um novo código para assinar.`,
		FormatBRL(d.Amount),
		Escape(d.PlanTitle),
	)
}

func PixCreated(d MessageData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💠 <b>PIX gerado</b>\n\nPlano: <b>%s</b>\nValor: %s\n", Escape(d.PlanTitle), FormatBRL(d.Amount))
	if d.PixExpiresAt != nil {
		fmt.Fprintf(&b, "Pague até: %s\n", FormatDateTime(*d.PixExpiresAt))
	}
	fmt.Fprintf(&b, "\nCopie o código abaixo no app do seu banco:\n\n<code>%s</code>", Escape(d.PixCode))
	return b.String()
}

type OpsAlert struct {
	TransactionID string
	BotName       string
	ContactID     string
	Reason        string
	CreatedAt     time.Time
	Now           time.Time
}

func OperatorAlert(a OpsAlert) string {
	return fmt.Sprintf(`🚨 <b>ALERTA</b>
Transação: <code>%s</code>
Bot: %s
Contato: %s
Motivo: %s
Criada: %s`,
		Escape(a.TransactionID),
		Escape(a.BotName),
		Escape(a.ContactID),
		Escape(a.Reason),
		humanize.RelTime(a.CreatedAt, a.Now, "atrás", "no futuro"),
	)
}
