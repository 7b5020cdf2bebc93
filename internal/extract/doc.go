// Package extract turns unstructured financial text, such as language model
// responses or bank statement excerpts, into normalized expense records.
// It tries structured JSON first and falls back to markdown tables, emoji
// annotated lines, embedded JSON objects and statement lines, in that order.
package extract
