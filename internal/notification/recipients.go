package notification

import "strings"

// RecipientList is an ordered list of e-mail addresses. Duplicates are kept.
// The zero value is an empty list ready to use.
type RecipientList struct {
	addrs []string
}

// NewRecipientList returns a list holding addrs in order.
func NewRecipientList(addrs ...string) *RecipientList {
	l := &RecipientList{}
	l.Set(addrs...)
	return l
}

// ParseRecipients splits a comma separated address string, trimming blanks
// and skipping empty entries.
func ParseRecipients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Set replaces the whole list.
func (l *RecipientList) Set(addrs ...string) {
	l.addrs = append([]string(nil), addrs...)
}

// Add appends addr to the end of the list.
func (l *RecipientList) Add(addr string) {
	l.addrs = append(l.addrs, addr)
}

// Remove drops every occurrence of addr and reports whether any was found.
func (l *RecipientList) Remove(addr string) bool {
	kept := l.addrs[:0]
	removed := false
	for _, a := range l.addrs {
		if a == addr {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	l.addrs = kept
	return removed
}

// Addresses returns a copy of the list in order.
func (l *RecipientList) Addresses() []string {
	return append([]string(nil), l.addrs...)
}

// Len returns the number of entries, duplicates included.
func (l *RecipientList) Len() int {
	return len(l.addrs)
}
