package constant

const (
	// Document store collections. Notes live in one sub-collection per topic.
	CollectionResearchNotes = "research_notes"
	CollectionReports       = "reports"

	ResearchTemperature = 0.3

	// PreviewLength is how much of a finding is echoed after it is saved.
	PreviewLength = 200

	// Human-facing timestamp inside notes and reports.
	DisplayTimeLayout = "2006-01-02 15:04:05"
	// Timestamp embedded in report keys.
	ReportKeyTimeLayout = "20060102_150405"

	DecomposeSystemPrompt = "You are a research coordinator who breaks down complex topics into focused subtopics. Respond ONLY with valid JSON."

	DecomposeUserPromptTemplate = `Break down this research request into 2-4 specific subtopics to investigate:

Request: %s

Provide ONLY a JSON response in this exact format:
{
    "topic": "main topic name",
    "subtopics": ["subtopic 1", "subtopic 2", "subtopic 3"]
}

Keep subtopics focused and specific. Each should be 3-8 words.`

	ResearchSystemPrompt = "You are a thorough research assistant with access to web search. Always search the web for current information."

	ResearchUserPromptTemplate = `You are a research specialist. Research the following subtopic using web search:

Subtopic: %s

Instructions:
1. Use web search to find current, authoritative information
2. Focus on recent developments and reliable sources
3. Keep your findings concise (3-4 paragraphs maximum)
4. Include key facts, statistics, and source URLs
5. Summarize the most important findings

Provide a well-structured research summary.`

	ReportSystemPrompt = "You are a professional report writer who synthesizes research into clear, well-organized documents."

	ReportUserPromptTemplate = `You are a professional report writer. Create a comprehensive research report based on the following research notes.

Topic: %s

Research Notes:
%s

Instructions:
1. Synthesize all research findings into a cohesive report
2. Organize information logically with clear sections
3. Include key findings, trends, and insights
4. Cite sources where mentioned in the research notes
5. Keep the report concise but comprehensive (2-3 pages)
6. Use professional formatting with markdown

Generate a well-structured final report.`

	// NoteSeparator sits between notes in the synthesis prompt.
	NoteSeparator = "\n---\n"
)
