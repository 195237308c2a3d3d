package slack

// Payload is the JSON body of an incoming-webhook post.
//
// Channel may be a "#channel" or a "@username" direct message. Username and
// IconEmoji override the defaults configured on the Slack integration.
type Payload struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a secondary content block rendered under the message text.
type Attachment struct {
	Color    string   `json:"color,omitempty"`
	Fallback string   `json:"fallback,omitempty"`
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
	Fields   []Field  `json:"fields,omitempty"`
}

// Field is a titled key/value cell inside an attachment. Short fields may be
// laid out side by side by the Slack client.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}
