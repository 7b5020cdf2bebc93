// Package llm sends documents to language model providers and turns their
// answers into expense records. It supports OpenAI, Anthropic and Gemini,
// with retry logic, rate limiting, and response caching.
package llm
