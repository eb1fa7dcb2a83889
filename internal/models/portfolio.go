package models

// Portfolio rows consumed by the resume projector. The portfolio itself
// is owned by an external collaborator; the agent only reads it.

type AboutEntry struct {
	Content string `json:"content"`
}

type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

type Skill struct {
	Name string `json:"name"`
}

// Contacts holds the messaging handle and email advertised to recruiters.
type Contacts struct {
	Telegram string `json:"telegram"`
	Email    string `json:"email"`
}
