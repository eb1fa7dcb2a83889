package hh

// Types mirror the job-board REST API payloads; only the fields the agent
// consumes are declared.

type Employer struct {
	Name string `json:"name"`
}

type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

type Snippet struct {
	Requirement    string `json:"requirement"`
	Responsibility string `json:"responsibility"`
}

// Vacancy is a job-board vacancy. Search results omit Description;
// GetVacancy fills it.
type Vacancy struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Employer     Employer `json:"employer"`
	Salary       *Salary  `json:"salary"`
	Description  string   `json:"description"`
	AlternateURL string   `json:"alternate_url"`
	Snippet      *Snippet `json:"snippet"`
}

type searchResponse struct {
	Items []Vacancy `json:"items"`
	Found int       `json:"found"`
	Pages int       `json:"pages"`
}

type Resume struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type resumesResponse struct {
	Items []Resume `json:"items"`
}

type NegotiationState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NegotiationVacancy struct {
	ID string `json:"id"`
}

type Negotiation struct {
	ID      string              `json:"id"`
	State   NegotiationState    `json:"state"`
	Vacancy *NegotiationVacancy `json:"vacancy"`
}

type negotiationsResponse struct {
	Items []Negotiation `json:"items"`
}

type MessageAuthor struct {
	ParticipantType string `json:"participant_type"`
}

type Message struct {
	ID        string        `json:"id"`
	Author    MessageAuthor `json:"author"`
	Text      string        `json:"text"`
	CreatedAt string        `json:"created_at"`
}

type messagesResponse struct {
	Items []Message `json:"items"`
}

// OAuthTokens is the token endpoint reply.
type OAuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SearchParams are the vacancy search filters derived from search settings.
type SearchParams struct {
	Text           string
	Areas          []string
	SalaryFrom     *int
	Experience     string
	Schedule       string
	Employment     string
	OnlyWithSalary bool
}
