// Package biz implements the ingestion and answering pipeline: loading
// recipe documents, semantic chunking, index construction, retrieval,
// and grounded answer generation.
package biz
