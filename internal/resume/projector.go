package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xaenox/hh-agent/internal/storage"
)

// Placeholders keep prompt templates well-formed when contacts are missing.
const (
	placeholderTelegram = "https://t.me/username"
	placeholderEmail    = "email@example.com"
)

// Projection is the plain-text resume plus contacts, rebuilt every cycle.
type Projection struct {
	Text     string
	Telegram string
	Email    string
	HasAbout bool
}

// Projector assembles a resume projection from the external portfolio store.
type Projector struct {
	store storage.PortfolioStore
}

func NewProjector(store storage.PortfolioStore) *Projector {
	return &Projector{store: store}
}

func (p *Projector) Project(ctx context.Context) (*Projection, error) {
	about, err := p.store.ListAbout(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading about entries: %w", err)
	}
	experience, err := p.store.ListExperience(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading experience: %w", err)
	}
	skills, err := p.store.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading skills: %w", err)
	}

	var sb strings.Builder
	if len(about) > 0 {
		sb.WriteString("About me:\n")
		for _, entry := range about {
			sb.WriteString(entry.Content)
			sb.WriteString("\n")
		}
	}
	if len(experience) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Experience:\n")
		for _, entry := range experience {
			fmt.Fprintf(&sb, "- %s at %s\n", entry.Title, entry.Company)
			if entry.Description != "" {
				fmt.Fprintf(&sb, "  %s\n", entry.Description)
			}
		}
	}
	if len(skills) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		names := make([]string, 0, len(skills))
		for _, skill := range skills {
			names = append(names, skill.Name)
		}
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(names, ", "))
	}

	projection := &Projection{
		Text:     sb.String(),
		Telegram: placeholderTelegram,
		Email:    placeholderEmail,
		HasAbout: len(about) > 0,
	}

	contacts, err := p.store.GetContacts(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("reading contacts: %w", err)
	}
	if contacts != nil {
		if contacts.Telegram != "" {
			projection.Telegram = contacts.Telegram
		}
		if contacts.Email != "" {
			projection.Email = contacts.Email
		}
	}
	return projection, nil
}
