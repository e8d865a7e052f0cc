package pipeline

import (
	"fmt"
	"strings"
)

func extractionPrompt(content string) string {
	return fmt.Sprintf(`Analyze the first page to identify:
1. Document title
2. Authors/contributors
3. Dates: Convert to YYYY-MM-DD format
- For month/year only: use 01 for day (e.g. "November 2010" -> "2010-11-01")
- For year only: use 01-01 (e.g. "2010" -> "2010-01-01")
- For month ranges, use first month (e.g. "April/May 2013" -> "2013-04-01")
- Preserve full dates if available (e.g. "15 June 2012" -> "2012-06-15")

Return IN THIS EXACT FORMAT:
CONTENT_TITLE: [Raw title]
CONTENT_AUTHORS: [Authors]
CONTENT_DATE: [Date in YYYY-MM-DD format]

Text to analyze:
%s`, head(content, 2000))
}

func initialAnalysisPrompt(content string, meta Metadata) string {
	return fmt.Sprintf(`Analyze this urban planning document to provide a high-level overview in the following format:

INITIAL ANALYSIS
===============

DOCUMENT SUMMARY
---------------
Main Topic: [Central theme of the document]
Key Message: [Core argument or main point]
Document Purpose: [Why this document was created]

AUDIENCE & SCOPE
--------------
Target Readers: [Who is this written for]
Geographic Focus: [Area covered]
Time Frame: [Period addressed]

KEY FINDINGS
-----------
Major Points:
- [First key finding]
- [Second key finding]
- [Third key finding]

SIGNIFICANCE
-----------
Planning Impact: [Importance to urban planning]
Innovation: [New ideas or approaches]
Context: [How this fits into broader planning]

Base your analysis only on:

Document Content (first 2000 characters):
%s

Document Metadata:
- File Name: %s
- File Type: %s
- Word Count: %d`,
		head(content, 2000), meta.FileName(), meta.str("file_type"), meta.wordCount())
}

func detailedAnalysisPrompt(content, initialAnalysis string) string {
	return fmt.Sprintf(`Create a detailed analysis based STRICTLY on the provided document content. If any section cannot be determined from the document, use "Not specified in document" or "No information available". Do not make assumptions or add information not present in the text.

DETAILED ANALYSIS
================

RESEARCH METHODOLOGY
------------------
Research Approach: [Only if explicitly stated in document, otherwise "Not specified"]
Data Sources: [Only sources directly mentioned in document]
Analysis Methods: [Only methods clearly described in document]
Theoretical Base: [Only theories/frameworks explicitly referenced]

KEY CONCEPTS
-----------
Urban Planning:
- [Concept name]: [How this planning concept is applied in the document]
Transport:
- [Concept name]: [How this transport concept is applied in the document]
Geography:
- [Geographic concept/pattern]: [The geographical principle or pattern]

METHODS AND TOOLS
---------------
Primary Methods:
- [Only methods clearly described in document]
Evidence Types:
- [Only evidence types explicitly mentioned]

IMPLEMENTATION
-------------
Strategy Planning: [Only if clearly outlined in document, otherwise "Not specified"]
Execution Tools: [Only tools explicitly mentioned]
Project Timeline: [Only if timeline is explicitly stated]
Resource Needs: [Only resources specifically mentioned]

STAKEHOLDER STRUCTURE
-------------------
Primary Actors: [Only stakeholders explicitly named in document]
Key Roles: [Only roles clearly defined in document]
Coordination: [Only if coordination methods are explicitly described]
Governance: [Only if governance structure is clearly stated]

Context from the initial overview:
%s

Use this document content for analysis:
%s

Important formatting and content rules:
1. Only include information explicitly stated in the document
2. Use "Not specified in document" or similar for missing information
3. Keep formatting clean with no markdown symbols
4. Be conservative in analysis - if in doubt, mark as "Not specified"`,
		head(initialAnalysis, 1000), head(content, 3000))
}

func classificationPrompt(detailedAnalysis string) string {
	return fmt.Sprintf(`Create a classification analysis following this exact format, with no markdown symbols, asterisks, or hashtags:

CLASSIFICATION ANALYSIS
=====================

DOCUMENT TYPOLOGY
---------------
Document Class: [Report/Study/Plan/Policy]
Format Type: [Technical/Academic/Professional]
Category: [Working Paper/Official Document/Draft]

TECHNICAL FEATURES
----------------
Writing Style: [Technical/Academic/General]
Presentation: [How information is presented]
Reference Format: [Citation and reference style]

DOCUMENT STRUCTURE
----------------
Organization: [How content is organized]
Main Sections: [Key document components]
Format Style: [Layout and presentation approach]

INTENDED USAGE
-------------
Primary Purpose: [Main intended use]
Target Users: [Intended audience]
Application: [How document should be used]

Base the classification on this detailed analysis:
%s

Important: Follow this exact format, using only plain text, with no markdown symbols or formatting characters.`,
		head(detailedAnalysis, 2000))
}

func confidentialityPrompt(content, detailedAnalysis, classification string) string {
	return fmt.Sprintf(`Analyze this document to determine its confidentiality level. Consider all aspects:

Document Content Preview: %s
Detailed Analysis: %s
Classification: %s

For each category below, look for SPECIFIC evidence in the document:

1. Government confidentiality - REQUIRES at least TWO of the following:
- Official government letterhead or markings
- Explicit statements that document is for government use only
- Internal government policy discussions not meant for public release
- Confidential government planning information
- Documents explicitly marked as government sensitive/confidential

2. Financial confidentiality - REQUIRES at least ONE of the following:
- Detailed financial statements with non-public figures
- Specific budget allocations not publicly disclosed
- Contract monetary values marked as confidential
- Private financial forecasts or projections

3. Personal Data confidentiality - REQUIRES at least ONE of the following:
- Personal identifiable information (names with addresses, phone numbers, etc.)
- Health information about specific individuals
- Personal financial details of individuals
- Employment records with personal details

4. Contract confidentiality - REQUIRES at least ONE of the following:
- Contract terms explicitly marked as confidential
- Non-public contract negotiations
- Proprietary business arrangements

Classify the document's confidentiality level as one of:
- None: No sensitive information present as defined above
- Government: Meets the specific criteria for government confidentiality
- Financial: Meets the specific criteria for financial confidentiality
- Personal Data: Meets the specific criteria for personal data confidentiality
- Contract: Meets the specific criteria for contract confidentiality

IMPORTANT: If the document has general sensitive information but does NOT clearly meet the SPECIFIC criteria for any of the above categories, you MUST classify it as "None" and explain that the document doesn't meet the threshold criteria.

Provide your response in this format:
CONFIDENTIALITY
==============
Level: [Selected level]
Reasoning: [Brief explanation with specific evidence or why it doesn't meet criteria]
Access Restrictions: [Any specific handling requirements, or "Standard handling" if None]`,
		head(content, 2000), head(detailedAnalysis, 1500), head(classification, 800))
}

func cataloguePrompt(meta Metadata, ext extractedInfo, detailedAnalysis, classification, confidentiality string) string {
	author := metadataValue(meta, "author", "Author")
	title := metadataValue(meta, "title", "Title")
	creationDate := metadataValue(meta, "created", "Creation Date")

	return fmt.Sprintf(`Create a detailed library catalogue entry for this urban planning document.
You MUST display these EXACT values in the DOCUMENT IDENTIFICATION section, preserving any prefixes:
- Original Title: %s
- Content-Derived Title: %s
- Metadata Author(s): %s
- Content-Derived Author(s): %s
- Metadata Creation Date: %s
- Content-Derived Date: %s

Use this information:
Analysis: %s
Classification: %s
Confidentiality Assessment: %s

Return catalogue entry in this EXACT format:

CATALOGUE ENTRY
==============

DOCUMENT IDENTIFICATION
---------------------
Original Title: [Use title from metadata]
Content-Derived Title: [Use title found in document text]
Metadata Author(s): [Use author from metadata]
Content-Derived Author(s): [Use authors found in document text]
Metadata Creation Date: [Use creation date from metadata]
Content-Derived Date: [Use exact date text found in document including any prefix]
Document Type: [Document type from classification]

GEOGRAPHICAL SCOPE
----------------
Cities: [All cities mentioned or referenced in the document]
Countries: [All countries mentioned or referenced in the document]
Regional Focus: [Broader geographical regions discussed]

SUBJECT CLASSIFICATION
--------------------
Primary Subject: [Main theme or topic]
Secondary Subjects:
- [Second theme or topic]
- [Third theme or topic]

DESCRIPTION
----------
[A detailed paragraph of 3-5 sentences describing the document, its main
arguments or findings, methodologies used, and its significance to urban
planning, transport, or geography.]

KEYWORDS
--------
[Comma-separated list of relevant keywords, at least 10 words]

CLASSIFICATION
-------------
Type: [Professional or Personal]
Confidentiality Level: [Use result from confidentiality assessment]
Access Restrictions: [Include any specific access or handling requirements]

Important instructions:
1. Keep the exact section formatting
2. Ensure CLASSIFICATION section includes both Type and Confidentiality Level
3. Base confidentiality level strictly on the confidentiality assessment
4. You MUST preserve exact dates and prefixes in Content-Derived Date`,
		title, ext.title, author, ext.authors, creationDate, ext.date,
		head(detailedAnalysis, 2000), head(classification, 800), head(confidentiality, 800))
}

func finalAnalysisPrompt(meta Metadata, content, detailedAnalysis, classification string) string {
	return fmt.Sprintf(`Based on the document content and previous analysis, provide a comprehensive final analysis.

DOCUMENT METADATA:
- File: %s
- Type: %s

CLASSIFICATION:
%s

DETAILED ANALYSIS:
%s

DOCUMENT CONTENT (first 2000 chars):
%s

Please provide a final synthesis that:
1. Summarizes the key findings
2. Places the document in broader context
3. Identifies significance for urban planning/transport
4. Notes any unique contributions or perspectives

Final Analysis:`,
		meta.FileName(), meta.str("file_type"), head(classification, 800), head(detailedAnalysis, 1500), head(content, 2000))
}

func writingStylePrompt(content string) string {
	return fmt.Sprintf(`Analyze this text to identify its distinctive academic writing style.
Focus specifically on:

1. SENTENCE STRUCTURE: 3-5 example sentences demonstrating typical structure and length
2. ACADEMIC PHRASES: 5-10 distinctive academic phrases or terms used
3. COMPARATIVE FRAMEWORKS: How comparisons between regions, cities, or concepts are structured
4. EVIDENCE INTEGRATION: How statistics, data, or evidence are incorporated into arguments
5. ANALYTICAL PATTERNS: Recurring patterns in how analysis or arguments are structured

Return your analysis in this EXACT format:

STYLE ANALYSIS
=============

SENTENCE STRUCTURE
----------------
Average Length: [Estimated average words per sentence]
Structure Patterns:
- [Pattern 1 description]
- [Pattern 2 description]

ACADEMIC PHRASES
--------------
- "[Phrase 1]" - [Brief context for usage]
- "[Phrase 2]" - [Brief context for usage]

COMPARATIVE FRAMEWORKS
-------------------
Primary Approach: [Main method of comparison]

EVIDENCE INTEGRATION
-----------------
Citation Style: [How evidence is cited]
Data Presentation: [How data is presented]

ANALYTICAL PATTERNS
----------------
Structure:
- [Pattern 1 description]
Flow:
- [How arguments typically progress]

Analyze only this content:
%s`, head(content, 4000))
}

func frameworksPrompt(content, detailedAnalysis string) string {
	return fmt.Sprintf(`Identify distinctive analytical frameworks in this urban planning document.
Focus on extracting 2-4 complete analytical frameworks covering:

1. COMPARATIVE ANALYSIS: How regions, cities, or policies are compared
2. ECONOMIC EVALUATION: How economic performance is evaluated
3. SPATIAL RELATIONSHIPS: How spatial relationships are analyzed
4. POLICY ASSESSMENT: How policy impacts are evaluated

For each framework, provide a NAME, the STRUCTURE (steps or components),
1-2 EXAMPLES directly from the text, and the VARIABLES considered.

Return your analysis in this EXACT format:

ANALYTICAL FRAMEWORKS
===================

FRAMEWORK 1: [Framework Name]
-------------------------
Structure:
- [Step/Component 1]
- [Step/Component 2]
Example:
"[Direct quote showing this framework in use]"
Variables:
- [Variable 1]
- [Variable 2]

FRAMEWORK 2: [Framework Name]
-------------------------
[Same structure as above]

Use only frameworks that are clearly demonstrated in these document sections:

DETAILED ANALYSIS:
%s

CONTENT PREVIEW:
%s`, head(detailedAnalysis, 1500), head(content, 1000))
}

func qaPrompt(content, detailedAnalysis, classification string) string {
	geoScope, subject := classificationHints(classification)
	return fmt.Sprintf(`Generate 8-10 question-answer pairs based on this document content.
Include these question types:

1. FACTUAL: Questions about specific data or facts in the document
2. ANALYTICAL: Questions requiring comparative or analytical thinking
3. THEORETICAL: Questions connecting content to urban planning or economic theory
4. METHODOLOGICAL: Questions about research methods or approaches
5. IMPLICATION: Questions about implications or significance

The geographic focus is: %s
The primary subject is: %s

For each Q&A pair:
- Make the question specific and substantive
- Write the answer in an academic style matching the document
- Include relevant data or evidence from the document
- Keep answers detailed but focused (100-200 words each)

Return in this format:

Q1: [Question text]
A1: [Answer text]

Q2: [Question text]
A2: [Answer text]

Generate questions based on:

DETAILED ANALYSIS:
%s

CONTENT PREVIEW:
%s`, geoScope, subject, head(detailedAnalysis, 1500), head(content, 1500))
}

func comparativePrompt(content, detailedAnalysis string) string {
	return fmt.Sprintf(`Identify 2-4 examples of comparative analysis from this document.
Focus on passages where there are direct comparisons between:

- Cities or regions (e.g., Madrid vs Barcelona)
- Time periods (e.g., 1980s vs 1990s)
- Economic metrics (e.g., GDP vs employment)
- Policy approaches (e.g., different investment strategies)

For each comparison, provide:
1. The ENTITIES being compared
2. The METRICS or factors used for comparison
3. The CONCLUSION or insight from the comparison
4. A direct QUOTE containing the comparison

Return your analysis in this EXACT format:

COMPARATIVE ANALYSES
==================

COMPARISON 1
-----------
Entities: [What's being compared]
Metrics: [Factors used for comparison]
Conclusion: [The insight gained]
Quote:
"[Direct quote from the document showing the comparison]"

COMPARISON 2
-----------
[Same structure as above]

Extract comparative analyses from:
%s

CONTENT PREVIEW:
%s`, head(detailedAnalysis, 1500), head(content, 1500))
}

func entityPrompt(initialAnalysis, detailedAnalysis, catalogueEntry string) string {
	return fmt.Sprintf(`Extract entities from this urban planning document analysis. Categorize them as follows:

Categories:
1. cities_places: Cities, neighborhoods, landmarks, specific locations
2. transport_planning: Transportation systems, infrastructure, modes (DLR, railways, bus, etc.)
3. urban_concepts: Urban planning concepts (regeneration, TOD, sustainability, zoning, etc.)
4. geographic_spatial: Geographic regions, zones, spatial patterns
5. problems_challenges: Urban problems, challenges, issues discussed
6. solutions_methods: Planning solutions, methods, interventions, policies

Instructions:
- Extract 5-15 entities per category (if present)
- Use specific names/terms from the text
- Avoid generic terms unless they're key concepts
- Include abbreviations if used (e.g., "DLR", "TOD")

Format your response EXACTLY as:

ENTITIES
========

cities_places:
- [Entity 1]
- [Entity 2]

transport_planning:
- [Entity 1]

urban_concepts:
- [Entity 1]

geographic_spatial:
- [Entity 1]

problems_challenges:
- [Entity 1]

solutions_methods:
- [Entity 1]

Text to analyze:

Initial Analysis:
%s

Detailed Analysis:
%s

Catalogue Entry:
%s`, head(initialAnalysis, 1000), head(detailedAnalysis, 2000), head(catalogueEntry, 1000))
}

func relationshipPrompt(entityNames []string, initialAnalysis, detailedAnalysis string) string {
	return fmt.Sprintf(`Extract relationships between entities in this urban planning document.

Available Entities:
%s

Relationship Types:
- created: Who created/authored what
- located_at: What is located where
- followed: Sequential/temporal relationships
- demonstrates: Exemplifies a concept
- implements: Puts into practice
- compared_to: Comparisons between entities
- affects: Causal relationships
- planned_by: Planning/design relationships
- funded_by: Financial relationships
- connected_to: Physical/logical connections

Instructions:
- Extract 5-15 relationships (if present)
- Use entities from the provided list
- Base relationships on actual content, not assumptions

Format your response EXACTLY as:

RELATIONSHIPS
============

1. FROM: [Entity 1] | RELATION: [Relationship Type] | TO: [Entity 2]
2. FROM: [Entity 1] | RELATION: [Relationship Type] | TO: [Entity 2]

Text to analyze:

Initial Analysis:
%s

Detailed Analysis:
%s`, strings.Join(entityNames, ", "), head(initialAnalysis, 800), head(detailedAnalysis, 1500))
}

// classificationHints pulls geographic focus and primary subject lines out of
// earlier step output when present.
func classificationHints(classification string) (geoScope, subject string) {
	for _, line := range strings.Split(classification, "\n") {
		if strings.Contains(line, "Geographic Focus") {
			if _, after, found := strings.Cut(line, ":"); found {
				geoScope = strings.TrimSpace(after)
			}
		} else if strings.Contains(line, "Primary Subject") {
			if _, after, found := strings.Cut(line, ":"); found {
				subject = strings.TrimSpace(after)
			}
		}
	}
	return geoScope, subject
}

func metadataValue(meta Metadata, keys ...string) string {
	if v := meta.str(keys...); v != "" {
		return v
	}
	return "Unknown"
}

// head returns at most n leading characters of s.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
