// Package llm abstracts text generation behind a single Generator
// interface, with a Gemini implementation driven through Genkit and an
// OpenAI-compatible HTTP implementation covering both OpenAI and Groq.
package llm
