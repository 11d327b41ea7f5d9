package adapter

import "context"

// Element is a node of the publisher page that a port can be opened over.
type Element interface {
	ID() string
	Attr(name string) string
	// ClearChildren removes every child node.
	ClearChildren()
}

// Page is the publisher document as seen by the confirmation flow.
type Page interface {
	// FindInlineSlot returns the element whose attr value names configID,
	// or nil when there is none.
	FindInlineSlot(attr, configID string) Element
	// NewDialogFrame creates the frame a dialog confirmation is rendered in.
	NewDialogFrame() Element
}

// AccountCreationRequest asks the confirmation view to finish account setup.
type AccountCreationRequest struct {
	Complete bool `json:"complete"`
}

// ActivityPort is an open channel to a confirmation view.
type ActivityPort interface {
	WhenReady(ctx context.Context) error
	AcceptResult(ctx context.Context) error
	Execute(msg any) error
	OnResizeRequest(cb func(height int))
	// OnEntitlements is invoked with the signed entitlements token each time
	// the view posts an entitlements message.
	OnEntitlements(cb func(jwt string))
}

// Activities opens confirmation views.
type Activities interface {
	OpenIframe(ctx context.Context, target Element, url string, params map[string]any) (ActivityPort, error)
}
