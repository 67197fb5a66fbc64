// Package gateway is the messaging boundary. The core consumes inbound
// {handle, text} events and produces replies with a keyboard variant; how
// those travel is the transport's business.
package gateway

import "context"

// KeyboardVariant selects which reply keyboard accompanies a reply.
type KeyboardVariant string

const (
	KeyboardNone     KeyboardVariant = "none"
	KeyboardAdmin    KeyboardVariant = "admin"
	KeyboardSupplier KeyboardVariant = "supplier"
	KeyboardClient   KeyboardVariant = "client"
)

// Inbound is one inbound event from the chat transport. Document carries
// an attached file (a supplier stock upload) when present.
type Inbound struct {
	Handle       int64
	Username     string
	Text         string
	Document     []byte
	DocumentName string
}

// Reply is the core's answer. File, when set, is sent as an attachment.
type Reply struct {
	Text     string
	Keyboard KeyboardVariant
	File     []byte
	FileName string
}

// Handler processes one inbound event. The command router implements this.
type Handler interface {
	Handle(ctx context.Context, in Inbound) Reply
}
