package interfaces

import (
	"fmt"
	"io"
	"strings"
)

// DeliveryMode selects how a tenant's objects are handed to clients.
type DeliveryMode int

const (
	// DeliveryModeRedirect answers with a redirect to a presigned URL.
	DeliveryModeRedirect DeliveryMode = iota
	// DeliveryModeProxy streams the object bytes through the gateway.
	DeliveryModeProxy
)

// String returns mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliveryModeRedirect:
		return "redirect"
	case DeliveryModeProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// ParseDeliveryMode parses the names returned by DeliveryMode.String.
func ParseDeliveryMode(s string) (DeliveryMode, error) {
	switch strings.ToLower(s) {
	case "redirect":
		return DeliveryModeRedirect, nil
	case "proxy":
		return DeliveryModeProxy, nil
	default:
		return 0, fmt.Errorf("unknown delivery mode: %q", s)
	}
}

// DeliveryKind tags which fields of a Delivery are populated.
type DeliveryKind int

const (
	// DeliveryRedirect carries RedirectURL.
	DeliveryRedirect DeliveryKind = iota
	// DeliveryStream carries ContentType, ContentLength and Body.
	DeliveryStream
)

// String returns kind name.
func (k DeliveryKind) String() string {
	switch k {
	case DeliveryRedirect:
		return "redirect"
	case DeliveryStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Delivery is a successful outcome of serving one request.
//
// For DeliveryStream the receiver owns Body and must Close it, whether or not
// it was read to the end.
type Delivery struct {
	Kind DeliveryKind

	RedirectURL string

	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// NewRedirect returns a redirect delivery to url.
func NewRedirect(url string) *Delivery {
	return &Delivery{Kind: DeliveryRedirect, RedirectURL: url}
}

// NewStream returns a stream delivery. An empty contentType is replaced by
// DefaultContentType.
func NewStream(contentType string, contentLength int64, body io.ReadCloser) *Delivery {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Delivery{
		Kind:          DeliveryStream,
		ContentType:   contentType,
		ContentLength: contentLength,
		Body:          body,
	}
}
