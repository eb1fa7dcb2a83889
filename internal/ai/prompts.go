package ai

// Prompt templates. Every template asks for raw JSON so replies can be
// parsed into typed results; code fences are stripped before parsing.

const searchTagsPrompt = `You are a job search assistant. Based on the resume below,
suggest short search queries (job titles or technology stacks) that would find
matching vacancies on a job board.

Return the response as a JSON object with this structure:
{
    "suggested_queries": ["query1", "query2", ...]
}

Suggest between 2 and 5 queries. Do not include any text outside the JSON.

Resume:
%s`

const evaluateVacancyPrompt = `You are a job search assistant. Evaluate how well the
vacancy below matches the candidate's resume.

Return the response as a JSON object with this structure:
{
    "score": 0-100,
    "recommendation": "apply" | "consider" | "skip",
    "priority": 1-5,
    "match_reasons": ["reason1", ...],
    "concerns": ["concern1", ...],
    "salary_assessment": "short assessment of the offered salary"
}

Do not include any text outside the JSON.

Vacancy title: %s
Company: %s
Salary: %s

Vacancy description:
%s

Resume:
%s`

const coverLetterPrompt = `You are a job search assistant. Write a short cover letter
(3-5 sentences) for the vacancy below on behalf of the candidate. Write in the
language of the vacancy description. Be specific about the candidate's relevant
experience, do not exaggerate, and do not use bullet points. Mention that the
candidate can be reached at %s or %s.

Return only the letter text, without any JSON or quotes.

Vacancy title: %s

Vacancy description:
%s

Resume:
%s`

const chatIntroPrompt = `You are a job search assistant. The candidate just applied to
a vacancy with the cover letter below. Write a short friendly first chat message
(1-2 sentences) to the recruiter: greet them, confirm interest, and mention the
candidate is reachable at %s or %s for a quicker conversation.

Return only the message text.

Cover letter:
%s`

const analyzeMessagePrompt = `You are a job search assistant. Analyze the incoming
recruiter chat message below, given the chat history.

Return the response as a JSON object with this structure:
{
    "sentiment": "positive" | "neutral" | "negative",
    "intent": "short label of what the sender wants",
    "is_bot": true if the message looks automated (screening bot, questionnaire, canned notification),
    "should_invite_telegram": true if a real person is engaged and moving the chat to a messenger is appropriate
}

Do not include any text outside the JSON.

Chat history:
%s

New message:
%s`

const chatResponsePrompt = `You are a job search assistant answering a recruiter chat
message on behalf of the candidate. Write a short polite reply (1-3 sentences) in
the language of the message. Answer any direct questions using the resume below;
if something is not in the resume, say the candidate will follow up.

Return only the reply text.

Vacancy: %s

Message:
%s

Resume:
%s`

const telegramInvitePrompt = `You are a job search assistant. A recruiter wrote the
message below. Write one short sentence, in the language of the message, politely
suggesting to continue the conversation in Telegram at %s.

Return only the sentence.

Message:
%s`
