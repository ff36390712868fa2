// Package services implements the driving ports: the retrieval engine that
// orchestrates chunking, embedding and the vector index, and the QA pipeline
// that turns retrieved context into answers.
//
// Services hold no durable state. Each Ingest/Search/Ask call is independent
// and may be issued concurrently against shared gateway handles.
package services
