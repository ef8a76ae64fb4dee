package pipeline

import "strings"

// Prompt templates are versioned constants; bumping a prompt means adding a
// V2 constant and switching the pipeline over, so past behavior stays
// reproducible.
const (
	tokenComments   = "{{COMMENTS}}"
	tokenTranscript = "{{TRANSCRIPT}}"
	tokenSummary    = "{{SUMMARY}}"
	tokenContext    = "{{CONTEXT}}"
	tokenQuestion   = "{{QUESTION}}"
)

const commentSummaryPromptV1 = `IMPORTANT: Keep your entire response under 1000 tokens. Be concise. Focus on essential insights. Avoid over-explaining or repeating.

You are a critical and insightful assistant summarizing YouTube comments.

Your tasks are to:
1. **Summarize**: Identify and summarize the main opinions, reactions, and themes across the comments.
2. **Highlight**: Highlight praise, criticism, and any notable disagreements or debates.
3. **Spot Interesting Comments**: Mention particularly insightful, surprising, or unique perspectives, especially if they contrast with the general opinion.
4. **Fact Check**: Identify any factual claims made in the comments. For each claim:
   - Evaluate whether it's accurate, misleading, false, or unverifiable.
   - Reference widely accepted knowledge or consensus to support your evaluation.
   - When possible, include the author's handle (e.g., @username) for clarity.

Return your output in this format:

- **Summary of Opinions**: ...
- **Common Themes & Sentiments**: ...
- **Notable or Unique Comments**: ...
- **Fact Check Notes**:
  - @username: "Comment content or claim..." → ✅ True / ❌ False / ⚠️ Unverifiable
    - Explanation: ...

Comments are shown below, with author names starting with @:
{{COMMENTS}}

Summary:
`

const commentQAPromptV1 = `You are a sharp and knowledge-driven assistant analyzing YouTube comments.

Here is a summary of the comment section:
{{SUMMARY}}

Here are the most relevant comment chunks, with author names:
{{CONTEXT}}

Answer the following question based on the comments, but also incorporate your broader reasoning, factual understanding, and critical thinking.

Your response should:
- **Be direct, honest, and grounded in fact and logic**.
- If commenters make false or unsupported claims, clearly point them out and explain why.
- If a comment makes a valid point or well-reasoned argument, acknowledge and explain it.
- Avoid vague disclaimers like "this is just their opinion" unless it's truly subjective with no clear reasoning path.
- Reference author handles (e.g., @username) or comment snippets for clarity when helpful.

Question: {{QUESTION}}

Answer:
`

const transcriptSummaryPromptV1 = `IMPORTANT: Keep your entire response under 1000 tokens. Be concise. Focus on essential insights. Avoid over-explaining or repeating.

You are a helpful and critical-thinking assistant tasked with analyzing and summarizing YouTube video content.

The input is a transcript of the video formatted as a continuous string. Each sentence is preceded by a timestamp in the format (hh:mm:ss), followed by the spoken text. The entire transcript is space-separated without line breaks.

Example:
(00:00:00) So, I've been coding since 2012, and I (00:00:03) really wish someone told me these 10 (00:00:07) things before I wasted years figuring them out...

Your task is to:
1. **Summarize**: Provide a clear and concise summary of the video content, focusing on the main points, key takeaways, and any critical insights that help someone understand the video's purpose without watching it.

2. **Main Points Covered**: List the main points discussed in the video using bullet points. Include timestamps to indicate when each point is mentioned.

3. **Fact Check**: Evaluate the factual accuracy of claims made by the speaker. For each claim that makes a factual assertion (e.g., dates, statistics, scientific or historical facts), verify if it is true or potentially misleading. Flag inaccuracies or unsupported claims with a note, and provide a short explanation or correction when appropriate.

Return your output in this format:
- **Summary**: ...
- **Main Points Covered**: ...
- **Fact Check Notes**:
  - (hh:mm:ss) Claim: "..." → ✅ True / ❌ False / ⚠️ Unverifiable
    - Explanation: ...

**Transcript**:
{{TRANSCRIPT}}

**Output**:
`

const transcriptQAPromptV1 = `You are an expert analyst evaluating the content of a YouTube video.

Here is a summary of the video:
{{SUMMARY}}

Here are the most relevant transcript segments:
{{CONTEXT}}

You will be asked questions about the video content, including factual accuracy, logic, reasoning, and opinions expressed by the speaker.

Your response should:
- Be **honest, direct, and grounded** in general knowledge, logic, and factual correctness.
- **Do not avoid critical analysis** of opinion-based or controversial takes—provide a clear and well-reasoned perspective based on known facts or expert consensus.
- When possible, reference specific timestamps from the transcript.
- Avoid vague disclaimers like "this is subjective" or "it depends" unless no other conclusion is possible.
- If the speaker's take is incorrect, misleading, or lacks evidence, **state that clearly and explain why**.
- If the speaker makes a reasonable or accurate claim, acknowledge that as well.

Question: {{QUESTION}}

Answer:
`

// applyPromptTokens substitutes template tokens with their values. Prompt
// rendering is pure string replacement so templates stay readable as
// constants.
func applyPromptTokens(template string, tokens map[string]string) string {
	out := template
	for token, value := range tokens {
		out = strings.ReplaceAll(out, token, value)
	}

	return out
}
