package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLead_Record(t *testing.T) {
	tests := []struct {
		name string
		lead Lead
		want []string
	}{
		{
			name: "full lead",
			lead: Lead{
				Channel:     "Some Channel",
				Title:       "Let's play, part 1",
				Views:       2000,
				ChannelLink: "https://www.youtube.com/@somechannel",
				Date:        "05/10/2026",
			},
			want: []string{"Some Channel", "Let's play, part 1", "2000", "https://www.youtube.com/@somechannel", "05/10/2026"},
		},
		{
			name: "missing channel link",
			lead: Lead{Channel: "C", Title: "T", Views: 0, Date: "20261005"},
			want: []string{"C", "T", "0", "", "20261005"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lead.Record()
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(LeadColumns))
		})
	}
}
