// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The retrieval engine talks to three external
// collaborators through these ports: the embedding service, the vector
// index, and the text-generation service. Each is a black box behind its
// interface; implementations live in internal/adapters/driven.
package driven
