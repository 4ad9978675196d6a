// Package gateway wraps the hosted WhatsApp gateway (WaSender) HTTP API.
// The gateway owns transport and delivery; this client only proxies.
package gateway

import (
	"fmt"
	"time"

	"waconsole/internal/utils"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Client holds the configuration for the WhatsApp gateway client.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// NewClient creates a new gateway client.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gateway baseURL cannot be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gateway apiKey cannot be empty")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second)

	log.Info().Str("baseURL", baseURL).Msg("WhatsApp gateway client configured")

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
	}, nil
}

// GetAllContacts pulls the gateway's full contact directory.
func (c *Client) GetAllContacts() ([]Contact, error) {
	var result contactListEnvelope
	resp, err := c.httpClient.R().
		SetResult(&result).
		Get("/api/contacts")

	if err != nil {
		return nil, fmt.Errorf("gateway GetAllContacts request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway GetAllContacts error: status %s, body: %s", resp.Status(), resp.String())
	}

	return result.Data, nil
}

// GetContactInfo fetches a single contact's profile from the gateway.
func (c *Client) GetContactInfo(phone string) (*Contact, error) {
	jid := utils.PhoneToJID(phone)

	var result contactEnvelope
	resp, err := c.httpClient.R().
		SetResult(&result).
		Get(fmt.Sprintf("/api/contacts/%s", jid))

	if err != nil {
		return nil, fmt.Errorf("gateway GetContactInfo request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway GetContactInfo error: status %s, body: %s", resp.Status(), resp.String())
	}

	return &result.Data, nil
}

// GetProfilePicture fetches the avatar URL for one contact. Many contacts
// hide their picture; the gateway then returns an empty URL, not an error.
func (c *Client) GetProfilePicture(phone string) (string, error) {
	jid := utils.PhoneToJID(phone)

	var result pictureEnvelope
	resp, err := c.httpClient.R().
		SetResult(&result).
		Get(fmt.Sprintf("/api/contacts/%s/picture", jid))

	if err != nil {
		return "", fmt.Errorf("gateway GetProfilePicture request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gateway GetProfilePicture error: status %s, body: %s", resp.Status(), resp.String())
	}

	return result.Data.ImgURL, nil
}

// SendMessage sends a text message and returns the provider message id
// used later to reconcile delivery-status callbacks.
func (c *Client) SendMessage(phone, text string) (string, error) {
	jid := utils.PhoneToJID(phone)

	payload := sendMessagePayload{To: jid, Text: text}

	var result sendMessageEnvelope
	resp, err := c.httpClient.R().
		SetBody(payload).
		SetResult(&result).
		Post("/api/send-message")

	if err != nil {
		return "", fmt.Errorf("gateway SendMessage request failed: %w", err)
	}
	if resp.IsError() {
		log.Error().Str("to", jid).Int("statusCode", resp.StatusCode()).Str("responseBody", resp.String()).Msg("Gateway rejected outbound message")
		return "", fmt.Errorf("gateway SendMessage error: status %s, body: %s", resp.Status(), resp.String())
	}

	return result.Data.MsgID, nil
}
