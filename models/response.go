package models

// ContactResponse is the payload of a contact request. AgentPhone is only
// set once the contact is unlocked.
type ContactResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	AgentPhone string `json:"agentPhone,omitempty"`
}
