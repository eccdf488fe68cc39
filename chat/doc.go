// Package chat answers user questions over their ingested documents.
//
// The Service type runs retrieval-augmented generation: it retrieves
// the chunks most relevant to a question, builds a grounded prompt,
// asks the completion model, and records the exchange in chat history.
// Answers name the source files they most likely drew from.
package chat
