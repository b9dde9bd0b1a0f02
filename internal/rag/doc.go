// Package rag implements the retrieval pipeline: loading text documents,
// splitting them into overlapping chunks, ingesting them into the knowledge
// store, retrieving the most relevant chunks for a question, and assembling
// the grounded prompt handed to the language model.
//
// Ingest flow:
//
//	loader -> chunker -> Ingestor -> knowledge.Store (embed + persist)
//
// Query flow:
//
//	question -> Retriever -> knowledge.Store.Search -> PromptBuilder -> llm
//
// Each stage is a small type wired together by the command layer, so tests
// can exercise any stage in isolation.
package rag
