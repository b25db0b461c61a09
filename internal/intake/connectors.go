package intake

import "coletaflow/internal"

// MailConnector is a mailbox the intake loop can drain. Implementations
// live in the provider subpackages.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
