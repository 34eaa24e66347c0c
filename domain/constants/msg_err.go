package constants

const (
	MsgLinkDeferred      = "O link de acesso será enviado em instantes."
	MsgNoInviteLinkAlert = "Falha ao gerar link de convite"
)

const (
	SERVICE_GATEWAY_ERROR   = "[SERVICE_GATEWAY].error "
	SERVICE_TELEGRAM_ERROR  = "[SERVICE_TELEGRAM].error "
	SERVICE_STORE_ERROR     = "[SERVICE_STORE].error "
	SERVICE_PUBLISHER_ERROR = "[SERVICE_PUBLISHER].error "
)
