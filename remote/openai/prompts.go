package openai

import "fmt"

const importResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "processed": {"type": "integer", "minimum": 0},
    "succeeded": {"type": "integer", "minimum": 0},
    "partial": {"type": "integer", "minimum": 0},
    "errors": {"type": "integer", "minimum": 0},
    "produced_ids": {
      "type": "array",
      "items": {"type": "string"}
    },
    "error_details": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "error": {"type": "string"}
        },
        "required": ["title", "error"],
        "additionalProperties": false
      }
    },
    "ancillary_content": {"type": "string"}
  },
  "required": ["processed", "succeeded", "partial", "errors", "produced_ids"],
  "additionalProperties": false
}`

const importPromptTemplate = `You are a document import service. Import and transform each document in
the given JSON batch, applying the processing options that accompany it.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

%s

Rules:
- "processed" must equal the number of documents in the batch.
- Every processed document is exactly one of succeeded, partial, or errors.
- "produced_ids" must contain one stable identifier per imported document, in batch order.
- Report failures in "error_details" with the document title (or its first field value) and a reason.
- "ancillary_content" may carry an export fragment for the batch; omit it when there is none.`

const enrichResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "processed": {"type": "integer", "minimum": 0},
    "errors": {"type": "integer", "minimum": 0}
  },
  "required": ["processed", "errors"],
  "additionalProperties": false
}`

const enrichPromptTemplate = `You are a document enrichment service. Enrich every record identified in
the given JSON request.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this schema:

%s

Rules:
- "processed" plus "errors" must equal the number of identifiers in the request.`

func buildImportSystemPrompt() string {
	return fmt.Sprintf(importPromptTemplate, importResponseSchema)
}

func buildEnrichSystemPrompt() string {
	return fmt.Sprintf(enrichPromptTemplate, enrichResponseSchema)
}
