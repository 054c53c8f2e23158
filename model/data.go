package model

import "strconv"

// LeadColumns is the header row of the leads file, in record order.
var LeadColumns = []string{"Channel", "Title", "Views", "Channel Link", "Date"}

// Lead is a qualifying video's channel metadata captured for outreach.
type Lead struct {
	Channel     string `json:"channel"`
	Title       string `json:"title"`
	Views       int64  `json:"views"`
	ChannelLink string `json:"channel_link,omitempty"`
	Date        string `json:"date"`
}

// Record renders the lead as a row matching LeadColumns.
func (l Lead) Record() []string {
	return []string{
		l.Channel,
		l.Title,
		strconv.FormatInt(l.Views, 10),
		l.ChannelLink,
		l.Date,
	}
}
