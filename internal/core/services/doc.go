// Package services holds the application core of railkm.
//
// RAGEngine implements the query and index driving ports on top of the
// driven ports (segmenters, post-processors, embedder, synthesizer, vector
// index, corpus store). EvaluationService scores the engine against
// expected answers, and CorpusSync keeps the index in step with a watched
// corpus directory.
package services
