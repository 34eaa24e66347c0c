package constants

const (
	TopicTransactionStatus = "transaction-status"
	QueueGatewayWebhook    = "gateway-webhook"
	QueueChatMember        = "telegram-chat-member"
)

const (
	GatewayMercadoPago = "mercadopago"
	GatewayStripe      = "stripe"
)

const (
	CurrencyBRL = "BRL"

	// PaymentNotFoundThreshold is how many "unknown payment id" answers a
	// pending transaction absorbs before it is forced to failed.
	PaymentNotFoundThreshold = 3
)

const (
	MQTTEventBackground = "background"
)
