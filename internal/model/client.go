package model

import "strings"

// Client represents a recipient of reminders
type Client struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	CompanyType string `json:"companyType"`
	Email       string `json:"email"`
	Mobile      *int64 `json:"mobile,omitempty"`
	GSTNo       string `json:"gstNo"`
	Address     string `json:"address"`
}

// FullName joins the non-empty name parts
func (c Client) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.FirstName, c.MiddleName, c.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName is the name used to address the client: the person's name,
// falling back to the company name.
func (c Client) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return strings.TrimSpace(c.CompanyName)
}

// HasEmail reports whether the client has a usable email address
func (c Client) HasEmail() bool {
	addr := strings.TrimSpace(c.Email)
	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1 && !strings.ContainsAny(addr, " \t\r\n")
}

// BlocklistEntry suppresses all reminders to a client
type BlocklistEntry struct {
	ClientID int64  `json:"clientId"`
	Reason   string `json:"reason"`
}

// Unsubscribe suppresses a single reminder stream for a client
type Unsubscribe struct {
	ReminderID int64  `json:"reminderId"`
	ClientID   int64  `json:"clientId"`
	ReasonType string `json:"reasonType"`
	Reason     string `json:"reason"`
}
