package gateway

// Contact is one entry of the gateway's contact directory.
type Contact struct {
	JID        string `json:"jid"`
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	PushName   string `json:"pushname"`
	ImgURL     string `json:"imgUrl"`
	IsVerified bool   `json:"verified"`
	IsBusiness bool   `json:"isBusiness"`
	LastSeen   *int64 `json:"lastSeen,omitempty"` // Unix timestamp, if the contact shares presence
}

type contactListEnvelope struct {
	Success bool      `json:"success"`
	Data    []Contact `json:"data"`
}

type contactEnvelope struct {
	Success bool    `json:"success"`
	Data    Contact `json:"data"`
}

type pictureEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ImgURL string `json:"imgUrl"`
	} `json:"data"`
}

type sendMessagePayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendMessageEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		MsgID string `json:"msgId"`
	} `json:"data"`
}

// WebhookEvent is the inbound callback shape posted by the gateway.
// Two event types matter here: an incoming message and a delivery-status
// update for a previously sent message.
type WebhookEvent struct {
	Event string `json:"event"` // "message.received" or "message.status"

	// message.received fields
	From     string `json:"from,omitempty"` // sender JID
	PushName string `json:"pushname,omitempty"`
	Text     string `json:"text,omitempty"`
	MsgID    string `json:"msgId,omitempty"`

	// message.status fields
	Status string `json:"status,omitempty"` // sent, delivered, read, failed
}
