package ai

import "strings"

// botMarkers are substrings typical for automated recruiter messages,
// in Russian and English. Compared lowercased.
var botMarkers = []string{
	"автоматическое сообщение",
	"автоматический ответ",
	"это автоматическ",
	"не отвечайте на это сообщение",
	"пройдите по ссылке",
	"заполните анкету",
	"заполните, пожалуйста, анкету",
	"пройдите тест",
	"ссылка на тестовое",
	"chat-bot",
	"чат-бот",
	"this is an automated",
	"automated message",
	"do not reply to this message",
	"please fill out the form",
	"complete the questionnaire",
	"follow the link below",
}

// IsBotMessage is a keyword heuristic used when LLM analysis fails.
func IsBotMessage(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range botMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
