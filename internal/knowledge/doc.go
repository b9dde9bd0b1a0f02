// Package knowledge manages the chunk vector store backing retrieval.
//
// A Store persists document chunks with their embeddings in PostgreSQL +
// pgvector and answers nearest-neighbor queries over them. Embeddings are
// generated through a Genkit ai.Embedder; the rest of the application never
// sees raw vectors.
//
// Ingest path:
//
//	Chunks (text + sequence)
//	     |
//	     v
//	Embedding generation (one batch per document)
//	     |
//	     v
//	documents row upsert + chunk replacement (PostgreSQL + pgvector)
//
// Query path:
//
//	Query text -> query embedding -> cosine similarity search -> ranked Results
//
// The Store depends on the consumer-defined Querier interface; the pgx
// implementation lives in postgres.go and mocks live in _test files.
package knowledge
