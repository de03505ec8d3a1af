package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/buildnotify/internal/notification"
)

func TestParseRecipients(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "a@x.com", want: []string{"a@x.com"}},
		{in: " a@x.com , b@x.com ,, ", want: []string{"a@x.com", "b@x.com"}},
		{in: "a@x.com,a@x.com", want: []string{"a@x.com", "a@x.com"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, notification.ParseRecipients(tt.in), "input %q", tt.in)
	}
}

func TestRecipientList(t *testing.T) {
	l := notification.NewRecipientList("a@x.com", "b@x.com")
	assert.Equal(t, 2, l.Len())

	l.Add("a@x.com")
	assert.Equal(t, []string{"a@x.com", "b@x.com", "a@x.com"}, l.Addresses())

	assert.True(t, l.Remove("a@x.com"))
	assert.Equal(t, []string{"b@x.com"}, l.Addresses())
	assert.False(t, l.Remove("missing@x.com"))

	l.Set()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Addresses())
}

func TestRecipientList_AddressesIsACopy(t *testing.T) {
	var l notification.RecipientList
	l.Add("a@x.com")

	got := l.Addresses()
	got[0] = "changed@x.com"
	assert.Equal(t, []string{"a@x.com"}, l.Addresses())
}

func TestRecipientList_SetCopiesInput(t *testing.T) {
	in := []string{"a@x.com"}
	l := notification.NewRecipientList(in...)
	in[0] = "changed@x.com"
	assert.Equal(t, []string{"a@x.com"}, l.Addresses())
}
